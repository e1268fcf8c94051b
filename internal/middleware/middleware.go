package middleware

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const gateKey = "sessionGate"

// Authenticate examines the bearer token on every request and stores the
// resulting session.Gate in the context. It never aborts; RequireAuth does.
func Authenticate(parser *session.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := session.FromHeader(c.GetHeader("Authorization"))
		if errors.Is(err, session.ErrNoToken) {
			c.Set(gateKey, session.Anonymous())
			c.Next()
			return
		}
		if err != nil {
			c.Set(gateKey, session.Rejected(err))
			c.Next()
			return
		}

		user, err := parser.Parse(token)
		if err != nil {
			logrus.WithError(err).WithField("path", c.FullPath()).Debug("Rejected bearer token")
			c.Set(gateKey, session.Rejected(err))
			c.Next()
			return
		}

		c.Set(gateKey, session.Authenticated(user, token))
		c.Set("userID", user.ID)
		c.Set("userRole", user.Role)
		c.Next()
	}
}

// GateFrom returns the session gate stored by Authenticate. Without it the
// gate reports that auth has not been checked.
func GateFrom(c *gin.Context) session.Gate {
	if v, ok := c.Get(gateKey); ok {
		if gate, ok := v.(session.Gate); ok {
			return gate
		}
	}
	return session.Gate{}
}

// RequireAuth rejects requests whose gate is not authenticated
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		gate := GateFrom(c)
		if !gate.AuthChecked() {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				models.NewAPIError(models.ErrInternalServer, "Authentication was not checked"))
			return
		}
		if !gate.IsAuthenticated() {
			message := "A valid Bearer token is required"
			var details map[string]interface{}
			if reason := gate.Reason(); reason != "" {
				details = map[string]interface{}{"reason": reason}
			}
			c.Header("WWW-Authenticate", `Bearer realm="stellar-burgers"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.ErrUnauthorized, message, details))
			return
		}
		c.Next()
	}
}
