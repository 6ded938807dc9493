package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/crewplex/workforce-app/utils"
)

// ApprovalRateLimiter throttles the signature endpoints; approvals are rare
// and a burst usually means a stuck client retrying.
func ApprovalRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(429, gin.H{
				"error":   "Too many requests",
				"message": "Please wait before retrying this approval",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogApprovalRequest logs every approval-pipeline request with its outcome.
func LogApprovalRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		utils.InfoLogger.Printf(
			"Approval Request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, status, duration,
		)
	}
}
