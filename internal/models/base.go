package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp is a point in time as sent by the dashboard server. The server
// emits either RFC 3339 strings or epoch milliseconds, both are accepted.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t for use in optional record fields
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// UnmarshalJSON decodes an RFC 3339 string or a millisecond epoch number
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	millis, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	t.Time = time.UnixMilli(int64(millis))
	return nil
}

// MarshalJSON encodes the timestamp as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Millis returns the epoch milliseconds of t, or 0 when t is nil
func (t *Timestamp) Millis() int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// Valid reports whether t is set
func (t *Timestamp) Valid() bool {
	return t != nil && !t.IsZero()
}

// SyncID identifies a sync configuration. The server may encode it as a
// number or a string.
type SyncID string

// UnmarshalJSON accepts both JSON strings and numbers
func (id *SyncID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SyncID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid sync id %s: %w", data, err)
	}
	*id = SyncID(n.String())
	return nil
}

func (id SyncID) String() string {
	return string(id)
}
