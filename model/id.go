package model

import (
	"bytes"
	"strconv"
	"time"
)

// Epoch is the platform epoch (first second of 2015) in milliseconds,
// used to derive creation timestamps from snowflake IDs.
const Epoch int64 = 1420070400000

// Snowflake is a platform entity ID. IDs are 64-bit integers carried as
// strings on the wire; the upper 42 bits encode the creation timestamp.
type Snowflake uint64

// ParseSnowflake parses the decimal string form of an ID.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Snowflake(v), nil
}

// String returns the decimal form used in REST paths and mention tokens.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsZero reports whether the ID is unset.
func (s Snowflake) IsZero() bool {
	return s == 0
}

// Time returns the creation time encoded in the ID.
func (s Snowflake) Time() time.Time {
	ms := int64(s>>22) + Epoch
	return time.UnixMilli(ms).UTC()
}

// MarshalJSON encodes the ID as a JSON string, or null when unset.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	if s == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts a string, a bare number, or null.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	str := string(bytes.Trim(data, `"`))
	v, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return err
	}
	*s = Snowflake(v)
	return nil
}
