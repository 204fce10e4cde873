package backend

import (
	"encoding/json"
	stderrors "errors"

	"certview/internal/certs"
	viewerrors "certview/internal/errors"
	"certview/internal/validation"
)

// DecodeRecords parses a certs.json body. The list is rejected as a whole
// when any record is malformed.
func DecodeRecords(body []byte) ([]certs.Record, error) {
	var rawList []json.RawMessage
	if err := json.Unmarshal(body, &rawList); err != nil {
		return nil, &viewerrors.SchemaError{Index: -1, Err: err}
	}
	if rawList == nil {
		// A literal null from the backend; treated as an empty listing.
		return []certs.Record{}, nil
	}

	records := make([]certs.Record, 0, len(rawList))
	for i, rawRecord := range rawList {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rawRecord, &fields); err != nil {
			return nil, &viewerrors.SchemaError{Index: i, Err: err}
		}
		if field, err := validation.ValidateRecordFields(fields); err != nil {
			return nil, &viewerrors.SchemaError{Index: i, Field: field, Err: err}
		}
		var record certs.Record
		if err := json.Unmarshal(rawRecord, &record); err != nil {
			field := ""
			var typeErr *json.UnmarshalTypeError
			if stderrors.As(err, &typeErr) {
				field = typeErr.Field
			}
			return nil, &viewerrors.SchemaError{Index: i, Field: field, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}
