package types

import "time"

type ApiResponse struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// LogEntry represents a log entry to be stored in the database
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
