package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/pocketpilot/pocketpilot-api/utils"
)

// LiveHandler pushes change signals to connected clients so open apps and
// widgets can refresh without polling.
type LiveHandler struct {
	M *melody.Melody
}

func NewLiveHandler() *LiveHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-Alive Configuration (Critical for Render.com/Cloud hosting)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("🔌 Client disconnected for user: %v", userID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &LiveHandler{M: m}
}

// HandleWS upgrades the connection. Browsers cannot set an Authorization
// header on websockets, so the access token rides in ?token=.
func (h *LiveHandler) HandleWS(c *gin.Context) {
	claims, err := utils.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		"user_id": claims.UserID,
	}); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
		return
	}

	log.Printf("✅ Client connected for user: %s", utils.MaskID(claims.UserID))
}

// BroadcastUpdate sends a signal to every session belonging to this user.
func (h *LiveHandler) BroadcastUpdate(userID string, updateType string) {
	if h == nil || h.M == nil {
		return
	}

	// Simple JSON construction to avoid struct overhead for simple signals
	msg := []byte(`{"type": "` + updateType + `"}`)

	err := h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("user_id")
		return exists && id == userID
	})

	if err != nil {
		log.Printf("⚠️ Error broadcasting to user %s: %v", utils.MaskID(userID), err)
	}
}
