package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/session"
	"github.com/GTDGit/stockcentral/internal/utils"
	"github.com/GTDGit/stockcentral/internal/web"
)

// CSRFField is the form field carrying the per-session token.
const CSRFField = "csrfToken"

// CSRFMiddleware rejects POST requests whose form token does not match the
// session token. Rejections render the error page and nothing downstream runs.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		sess := session.FromContext(c)
		submitted := c.PostForm(CSRFField)
		if sess == nil || !utils.EqualTokens(submitted, sess.CSRFToken) {
			log.Ctx(c.Request.Context()).Warn().
				Str("ip", c.ClientIP()).
				Int("admin_id", c.GetInt("admin_id")).
				Err(utils.ErrInvalidCSRF).
				Msg("form token mismatch")
			c.HTML(http.StatusForbidden, web.ErrorTemplate, gin.H{
				"Message": "The link you followed has expired. Please reload the page and try again.",
				"BackURL": c.Request.URL.RequestURI(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
