package utils

import (
	"encoding/json"
	"strings"
	"time"

	"pickup-scheduler/types"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// ParseFlexibleTime parses a timestamp string as RFC 3339 first and falls back
// to the lenient formats jinzhu/now understands. Returns a zero time and false
// when the value cannot be parsed at all.
func ParseFlexibleTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}

	if t, err := now.Parse(value); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// sanitizeRequestBody keeps oversized or binary-looking request bodies out of
// the log table.
func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})

		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
			for key, files := range form.File {
				fileInfo := make([]map[string]interface{}, len(files))
				for i, file := range files {
					fileInfo[i] = map[string]interface{}{
						"filename": file.Filename,
						"size":     file.Size,
						"content":  "[FILE_CONTENT_REMOVED]",
					}
				}
				formData[key] = fileInfo
			}
		}

		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())
	if len(body) > 10000 {
		return "[LARGE_REQUEST_BODY_TRUNCATED]"
	}
	return body
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for logging
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	// Deep copies prevent fasthttp buffer reuse from corrupting stored data
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}
