package bridge

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"novelweaver/logutils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Helpers connect from extension origins; the fetch protocol carries no
	// credentials, so any origin is accepted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler attaches a helper extension connection to the hub and pumps its
// messages through the protocol dispatcher.
func WSHandler(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		hub.add(conn)
		logutils.Log.Info("bridge helper connected")

		defer func() {
			hub.remove(conn)
			logutils.Log.Info("bridge helper disconnected")
		}()

		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return nil
			}
			hub.dispatch(msg)
		}
	}
}
