// Optional JSON field types.
//
// The claim PATCH surface distinguishes three wire states per key: absent
// (nothing happens), present with null (explicit clear), and present with a
// value. encoding/json only invokes UnmarshalJSON when the key exists, so
// these types record presence without resorting to raw-message maps.
package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OptionalString records whether a string key was supplied. A JSON null
// counts as supplied-empty.
type OptionalString struct {
	Set   bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// OptionalInt records whether an integer key was supplied; null yields a nil
// value.
type OptionalInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalDate records whether a date key was supplied; null yields a nil
// value (explicit clear). Accepts "2006-01-02" or RFC 3339.
type OptionalDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalDate) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}
