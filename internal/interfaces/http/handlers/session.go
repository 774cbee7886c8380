// internal/interfaces/http/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/sameday-checkout/internal/domain/checkout"
	"github.com/your-org/sameday-checkout/internal/interfaces/http/middleware"
)

// getOrCreateSessionID gets the guest session ID from the cookie or
// creates a new one. The X-Session-ID header takes precedence so
// non-browser clients can carry their session explicitly.
func getOrCreateSessionID(c *gin.Context) string {
	if headerID := c.GetHeader("X-Session-ID"); headerID != "" {
		return headerID
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Set session cookie (24 hours)
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}

// subjectFromContext builds the checkout subject for the request:
// the authenticated user when a valid token was presented, otherwise
// the guest session.
func subjectFromContext(c *gin.Context) checkout.Subject {
	sub := checkout.Subject{
		SessionID: getOrCreateSessionID(c),
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		sub.UserID = &userID
	}
	if email, ok := middleware.GetUserEmailFromContext(c); ok {
		sub.Email = email
	}

	return sub
}
