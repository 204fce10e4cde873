package validation

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	viewerrors "certview/internal/errors"
)

// RequiredRecordFields lists the keys every backend record must carry.
var RequiredRecordFields = []string{"key_id", "created_at", "expires", "principals", "message", "revoked"}

// ValidateBackendAddress accepts an absolute http(s) URL. An empty address is
// valid and means no backend is configured.
func ValidateBackendAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(trimmed)
	if err != nil {
		return viewerrors.ErrInvalidAddress
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return viewerrors.ErrInvalidAddress
	}
	if parsed.Host == "" {
		return viewerrors.ErrInvalidAddress
	}
	return nil
}

func ValidateTimeout(value time.Duration) error {
	if value <= 0 || value > 5*time.Minute {
		return viewerrors.ErrInvalidTimeout
	}
	return nil
}

func ValidateRetryMax(value int) error {
	if value < 0 || value > 10 {
		return viewerrors.ErrInvalidRetryMax
	}
	return nil
}

func ValidatePort(port string) error {
	value, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil || value <= 0 || value > 65535 {
		return viewerrors.ErrInvalidPort
	}
	return nil
}

// ValidateRecordFields checks that a raw record object has every required
// key and a non-empty key_id. It returns the offending field name with the error.
func ValidateRecordFields(raw map[string]json.RawMessage) (string, error) {
	for _, field := range RequiredRecordFields {
		value, ok := raw[field]
		if !ok || string(value) == "null" {
			return field, viewerrors.ErrMissingField
		}
	}
	var keyID string
	if err := json.Unmarshal(raw["key_id"], &keyID); err != nil {
		return "key_id", err
	}
	if strings.TrimSpace(keyID) == "" {
		return "key_id", viewerrors.ErrEmptyKeyID
	}
	return "", nil
}
