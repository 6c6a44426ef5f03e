package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/moyoez/resume-intake/tool"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // routes are loopback-only
	},
}

// HandleWS upgrades the request and keeps the connection registered until the client goes away.
func HandleWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			tool.DefaultLogger.Warnf("[Notify] Upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		hub.Register(conn)
		defer hub.Unregister(conn)
		tool.DefaultLogger.Debugf("[Notify] Client %s connected", conn.RemoteAddr())

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
