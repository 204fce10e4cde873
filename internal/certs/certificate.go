package certs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one issued certificate as delivered by the CA backend.
// Timestamps are kept verbatim; the console never parses them.
type Record struct {
	KeyID      string     `json:"key_id"`
	CreatedAt  string     `json:"created_at"`
	Expires    string     `json:"expires"`
	Principals Principals `json:"principals"`
	Message    string     `json:"message"`
	Revoked    bool       `json:"revoked"`
}

// Principals is the display form of a certificate's principal list.
// The backend sends a JSON array; a plain string is accepted as well.
type Principals string

// UnmarshalJSON accepts either a string or an array of strings.
func (p *Principals) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("principals: null value")
	}
	if trimmed[0] == '[' {
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("principals: %w", err)
		}
		*p = Principals(strings.Join(list, ","))
		return nil
	}
	var single string
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return fmt.Errorf("principals: %w", err)
	}
	*p = Principals(single)
	return nil
}

func (p Principals) String() string {
	return string(p)
}
