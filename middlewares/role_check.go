package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewplex/workforce-app/utils"
)

func RoleCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		userRole, exists := c.Get("role")

		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		switch role {
		case "admin":
			if userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
				c.Abort()
				return
			}
		case "company_user":
			if userRole != "company_user" && userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("company access required"))
				c.Abort()
				return
			}
		case "crew_chief":
			if userRole != "crew_chief" && userRole != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("crew chief access required"))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
