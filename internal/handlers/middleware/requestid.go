// Package middleware carries the cross-cutting gin middleware: request
// tracking, access logging, security headers, rate limiting and metrics.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	contextRequestIDKey = "middleware.request_id"
)

// RequestID propagates the caller's X-Request-ID or generates one. The ID is
// echoed in the response and attached to every log line for the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(contextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID returns the request's tracking ID, or "" outside RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextRequestIDKey)
}
