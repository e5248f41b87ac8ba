package middleware

import (
	"github.com/gin-gonic/gin"
)

// AdminUser is the basic-auth account name for the admin pages.
const AdminUser = "admin"

// AdminAuth guards /admin with HTTP basic auth when password is set and
// lets everything through otherwise.
func AdminAuth(password string) gin.HandlerFunc {
	if password == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return gin.BasicAuthForRealm(gin.Accounts{AdminUser: password}, "admin")
}
