package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/game"
)

const wsReadDeadline = time.Minute

// wsConn adapts a websocket connection to the line protocol: one text
// message per protocol line, both directions.
type wsConn struct {
	socket       *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(socket *websocket.Conn, writeTimeout time.Duration) *wsConn {
	socket.SetReadDeadline(time.Now().Add(wsReadDeadline))
	socket.SetPongHandler(func(string) error {
		socket.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})
	return &wsConn{socket: socket, writeTimeout: writeTimeout}
}

func (wc *wsConn) ReadLine() (string, error) {
	wc.socket.SetReadDeadline(time.Now().Add(wsReadDeadline))
	_, data, err := wc.socket.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (wc *wsConn) WriteLine(line string) error {
	if wc.writeTimeout > 0 {
		wc.socket.SetWriteDeadline(time.Now().Add(wc.writeTimeout))
	}
	return wc.socket.WriteMessage(websocket.TextMessage, []byte(line))
}

func (wc *wsConn) Close() error {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second))
	wc.socket.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return wc.socket.Close()
}

func (wc *wsConn) RemoteAddr() string {
	return wc.socket.RemoteAddr().String()
}

// NewGateway builds the HTTP side of the server: a health endpoint and
// a websocket upgrade that funnels browser clients onto the same
// session code path as raw TCP.
func NewGateway(allowedOrigins []string, writeTimeout time.Duration, hub *Hub, registry *game.Registry, boards LeaderboardReader, log zerolog.Logger) *gin.Engine {
	gwLog := log.With().Str("component", "gateway").Logger()

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		}))
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, req.Header.Get("Origin"))
		},
	}

	r.GET("/ws", func(ctx *gin.Context) {
		socket, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			gwLog.Warn().Err(err).Str("remote", ctx.ClientIP()).Msg("websocket upgrade failed")
			return
		}

		cs := NewClientSession(newWSConn(socket, writeTimeout), hub, registry, boards, gwLog)
		hub.Add(cs)
		go cs.Run()
	})

	return r
}
