package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/repetit/testflow-backend/internal/response"
)

const (
	// ContextKeyUserID is the Gin context key for the requester identifier.
	ContextKeyUserID = "user_id"

	// CodeEntryPath is where out-of-order requests are redirected.
	CodeEntryPath = "/api/v1/flow/code"
)

// StagePeeker reports which stage artifacts exist for a user.
type StagePeeker interface {
	Peek(ctx context.Context, userID string) (hasDescriptor, hasIdentity bool)
}

// RequireUserID extracts the requester identifier from the user_id query
// parameter (or the X-User-Id header) and stores it in the context. Without
// one, no stage operation can run.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			userID = c.GetHeader("X-User-Id")
		}
		if userID == "" {
			response.AbortFail(c, http.StatusBadRequest, response.ErrMissingIdentity)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the requester identifier set by RequireUserID.
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(ContextKeyUserID)
	s, _ := id.(string)
	return s
}

// RequireCheckedCode guards stages that need a materialized test descriptor.
// A violation is navigation, not an error: the request is redirected to the
// code-entry stage without an error payload.
func RequireCheckedCode(peeker StagePeeker) gin.HandlerFunc {
	return func(c *gin.Context) {
		hasDescriptor, _ := peeker.Peek(c.Request.Context(), GetUserID(c))
		if !hasDescriptor {
			redirectToCodeEntry(c)
			return
		}
		c.Next()
	}
}

// RequireIdentity guards the test stage: both a descriptor and a captured
// identity must exist.
func RequireIdentity(peeker StagePeeker) gin.HandlerFunc {
	return func(c *gin.Context) {
		hasDescriptor, hasIdentity := peeker.Peek(c.Request.Context(), GetUserID(c))
		if !hasDescriptor || !hasIdentity {
			redirectToCodeEntry(c)
			return
		}
		c.Next()
	}
}

func redirectToCodeEntry(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, CodeEntryPath)
	c.Abort()
}
