package api

import (
	"net/http"
	"os"
	"time"

	"github.com/ericogr/titan-arena/internal/constants"
	"github.com/gin-gonic/gin"
)

// setSessionCookie sets the session cookie with appropriate flags for dev/prod.
func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	secure := os.Getenv(constants.EnvSessionSecureCookie) == "1"
	c.SetCookie(constants.CookieSessionName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(constants.CookieSessionName, "", -1, "/", "", false, true)
}

func sessionClaims(c *gin.Context) (*jwtClaims, error) {
	token, err := c.Cookie(constants.CookieSessionName)
	if err != nil || token == "" {
		return nil, http.ErrNoCookie
	}
	return parseAndValidateSession(token)
}

// AuthRequired validates the session cookie and injects identity into context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(constants.CookieSessionName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		claims, err := parseAndValidateSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set(constants.ContextKeyPlayerID, claims.Sub)
		c.Set(constants.ContextKeyPlayerName, claims.Name)
		c.Next()
	}
}

// playerFrom returns the identity AuthRequired stored on the context.
func playerFrom(c *gin.Context) (id, name string) {
	id = c.GetString(constants.ContextKeyPlayerID)
	name = c.GetString(constants.ContextKeyPlayerName)
	return id, name
}
