package pickup

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ContactDetails holds the person to notify about the pickup.
// Stored as a JSON document on the pickup row.
type ContactDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Scan implements the Scanner interface for database deserialization
func (cd *ContactDetails) Scan(value interface{}) error {
	return scanJSON(value, cd)
}

// Value implements the driver Valuer interface for database serialization
func (cd ContactDetails) Value() (driver.Value, error) {
	return json.Marshal(cd)
}

// PickupWindow is the time range the carrier is expected to collect in.
// Timestamps are kept as RFC 3339 strings so that rows written by other
// systems with odd formats still load; parsing happens at use sites.
type PickupWindow struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

// Scan implements the Scanner interface for database deserialization
func (pw *PickupWindow) Scan(value interface{}) error {
	return scanJSON(value, pw)
}

// Value implements the driver Valuer interface for database serialization
func (pw PickupWindow) Value() (driver.Value, error) {
	return json.Marshal(pw)
}

// StringSlice is a custom type to handle JSON serialization for PostgreSQL
type StringSlice []string

// Scan implements the Scanner interface for database deserialization
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}
	return scanJSON(value, ss)
}

// Value implements the driver Valuer interface for database serialization
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
