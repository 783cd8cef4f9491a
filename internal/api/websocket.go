package api

import (
	"github.com/ericogr/titan-arena/internal/realtime"
	"github.com/gin-gonic/gin"
)

// WebSocket upgrades the request onto the realtime hub. A valid session
// cookie authenticates the connection up front; without one the client must
// send an auth message first.
func WebSocket(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ident *realtime.Identity
		if claims, err := sessionClaims(c); err == nil {
			ident = &realtime.Identity{PlayerID: claims.Sub, Username: claims.Name}
		}
		hub.ServeWS(c.Writer, c.Request, ident)
	}
}
