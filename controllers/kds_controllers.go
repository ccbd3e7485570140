package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Tokens are checked by the websocket auth middleware, so any origin may
// open the socket.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// KDSHandler -> live order and waiter-call events for the caller's
// restaurant. Admins receive every restaurant's events.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		utils.InfoLogger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	restaurantID := sess.RestaurantID
	if sess.IsAdmin() {
		restaurantID = kds.AllRestaurants
	}
	sub := kc.Hub.Subscribe(restaurantID, string(sess.Role))
	log := utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"user_id":       sess.UserID,
		"role":          sess.Role,
	})
	log.Info("websocket subscriber connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		readLoop(ws)
	}()

	writeLoop(ws, sub, done)
	kc.Hub.Unsubscribe(sub)
	ws.Close()
	<-done
	log.Info("websocket subscriber disconnected")
}

// readLoop drains client frames so pongs and close messages are processed.
func readLoop(ws *websocket.Conn) {
	ws.SetReadLimit(512)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func writeLoop(ws *websocket.Conn, sub *kds.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Dropped by the hub for falling behind.
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow consumer"))
				return
			}
			if err := ws.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
