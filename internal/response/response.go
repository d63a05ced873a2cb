package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the standardized API response envelope.
type Response struct {
	Data     interface{} `json:"data"`
	Notice   *Notice     `json:"notice,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// Fail sends a notice-only response for the given error code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Response{
		Notice:   NewNotice(code, "", nil),
		Metadata: buildMetadata(c),
	})
}

// AbortFail sends a notice-only response and aborts the middleware chain.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	Fail(c, statusCode, code)
	c.Abort()
}

// FailWithNotice sends a fully built notice, optionally alongside data
// (e.g. the surviving session state next to a submission failure).
func FailWithNotice(c *gin.Context, statusCode int, notice *Notice, data interface{}) {
	c.JSON(statusCode, Response{
		Data:     data,
		Notice:   notice,
		Metadata: buildMetadata(c),
	})
}

// FailWithFields sends a validation notice with field-level details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Response{
		Notice:   NewNotice(code, "", fields),
		Metadata: buildMetadata(c),
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func buildMetadata(c *gin.Context) Metadata {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
