package realtime

import (
	"context"
	"net/http"
	"strings"

	"churrasco/internal/pkg/jwt"
	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RevocationChecker reports whether a token id was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	revoked  RevocationChecker
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler accepts the allowed browser origins. Native clients send no
// Origin header and are always accepted.
func NewHandler(hub *Hub, jwtService *jwt.Service, revoked RevocationChecker, allowedOrigins []string, log *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		hub:     hub,
		jwt:     jwtService,
		revoked: revoked,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.ServeWS)
}

// ServeWS authenticates with ?token=<jwt> since browsers cannot set headers
// on the websocket handshake.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "token query parameter is required")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if h.revoked != nil {
		revoked, err := h.revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify token")
			return
		}
		if revoked {
			response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Token was signed out")
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("realtime: upgrade failed", zap.Error(err))
		return
	}

	h.log.Debug("realtime: connected", zap.Int64("user_id", claims.UserID))
	h.hub.serve(conn, claims.UserID)
	h.log.Debug("realtime: disconnected", zap.Int64("user_id", claims.UserID))
}
