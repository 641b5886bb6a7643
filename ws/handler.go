package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-course-backend/utils"
)

// Authorizer checks that userID may watch courseID.
type Authorizer func(ctx context.Context, userID, courseID string) error

// HandleCourseWebSocket upgrades editors of one course. Browsers cannot set
// headers on a websocket handshake, so the token comes in the query string.
func (h *Hub) HandleCourseWebSocket(authorize Authorizer, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}

	return func(c *gin.Context) {
		courseID := c.Param("courseId")

		claims, err := utils.VerifyToken(c.Query("token"))
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID := claims.Subject()
		if err := authorize(c.Request.Context(), userID, courseID); err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		client := h.Register(courseID, userID, conn)
		if hello, err := json.Marshal(CourseEvent{Type: "connected", CourseID: courseID}); err == nil {
			client.Send <- hello
		}
		defer h.Unregister(courseID, conn)
		h.log.Info("ws connected", zap.String("course_id", courseID), zap.String("user_id", userID))

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.log.Info("ws disconnected", zap.String("course_id", courseID), zap.String("user_id", userID))
	}
}
