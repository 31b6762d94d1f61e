package response

import (
	"fmt"
	"mime"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is where the request id middleware stores the id on the
// gin context; every envelope echoes it back.
const RequestIDKey = "RequestID"

// Response is the JSON envelope of every non-file response.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error writes a failure envelope. err carries client-safe details only,
// such as field validation messages.
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Attachment sends data as a download named filename.
func Attachment(c *gin.Context, code int, filename, contentType string, data []byte) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", "download")
	}
	c.Header("Content-Disposition", disposition)
	c.Data(code, contentType, data)
}
