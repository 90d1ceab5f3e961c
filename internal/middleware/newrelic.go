package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicUserMiddleware tags the New Relic transaction started by nrgin with the
// signed-in user and reports handler errors. It must run after AuthMiddleware.
func NewRelicUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if user := CurrentUser(c); user != "" {
			txn.AddAttribute("enduser.id", user)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
