package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/crewplex/workforce-app/utils"
)

func PDFLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Approval transition requested for timesheet ID: %s", c.Param("timesheet_id"))

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Printf("Approval transition completed for timesheet ID: %s", c.Param("timesheet_id"))
		} else {
			utils.ErrorLogger.Printf("Approval transition failed for timesheet ID: %s", c.Param("timesheet_id"))
		}
	}
}
