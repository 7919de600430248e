package bridge

import (
	"io"

	"github.com/go-json-experiment/json"
)

// Response is the envelope every operation answers with.
// Generated clients declare the same shape as ApiResponse<T>.
//
// Wire format:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": {"code": "not_found", "message": "..."}}
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitzero"`
	Error   *Error `json:"error,omitzero"`
}

// encodeResponse writes a successful response envelope.
func encodeResponse(w io.Writer, data any) error {
	return json.MarshalWrite(w, Response{Success: true, Data: data})
}

// encodeErrorResponse writes an error response envelope.
func encodeErrorResponse(w io.Writer, err *Error) error {
	return json.MarshalWrite(w, Response{Success: false, Error: err})
}
