package middleware

import "github.com/gin-gonic/gin"

// clientIDKey is the key used to store the authenticated API client's ID in the request context.
const clientIDKey = contextKey("clientID")

// GetClientIDFromContext retrieves the authenticated client ID (the token subject).
// It returns the client ID and a boolean indicating if it was found.
func GetClientIDFromContext(c *gin.Context) (string, bool) {
	clientID, ok := c.Request.Context().Value(clientIDKey).(string)
	if !ok || clientID == "" {
		return "", false
	}
	return clientID, true
}
