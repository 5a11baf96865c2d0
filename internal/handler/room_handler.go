package handler

import (
	"context"

	"roomlink-be/internal/model"
	"roomlink-be/internal/pkg/logger"
	"roomlink-be/internal/pkg/serverutils"
	"roomlink-be/internal/service"
	internalWS "roomlink-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RoomHandler upgrades accepted participants onto their room's live socket.
type RoomHandler struct {
	hub            *internalWS.Hub
	router         *internalWS.Router
	sessionService service.ISessionService
	logger         logger.ILogger
}

func NewRoomHandler(
	hub *internalWS.Hub,
	router *internalWS.Router,
	sessionService service.ISessionService,
	log logger.ILogger,
) *RoomHandler {
	return &RoomHandler{
		hub:            hub,
		router:         router,
		sessionService: sessionService,
		logger:         log,
	}
}

// ServeWs authenticates the handshake, gates on admission, then hands the
// connection to the hub.
func (h *RoomHandler) ServeWs(c *fiber.Ctx) error {
	roomCode := c.Params("code")

	tokenStr := serverutils.ExtractToken(c)
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	claims, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("RoomHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing username"})
	}

	// Only accepted participants get a socket. Everyone else keeps polling
	// the status endpoint from the waiting room.
	status, err := h.sessionService.CheckStatus(c.UserContext(), userID, roomCode)
	if err != nil {
		if err == service.ErrSessionNotFound || err == service.ErrSessionInactive {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not a participant"})
	}
	if status != model.StatusAccepted {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not admitted to this session"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			client := internalWS.NewClient(h.hub, conn, h.router, roomCode, username, userID)

			ctx := context.Background()
			if err := h.sessionService.MarkConnected(ctx, userID, roomCode, client.ID); err != nil {
				h.logger.Warn("RoomHandler", "Failed to mark participant connected", map[string]interface{}{"room": roomCode, "user": username, "error": err.Error()})
			}

			h.logger.Info("RoomHandler", "Starting room session", map[string]interface{}{"room": roomCode, "user": username})
			client.Serve(func() {
				if err := h.sessionService.MarkDisconnected(ctx, userID, roomCode); err != nil {
					h.logger.Warn("RoomHandler", "Failed to mark participant disconnected", map[string]interface{}{"room": roomCode, "user": username, "error": err.Error()})
				}
			})
			h.logger.Info("RoomHandler", "Room session ended", map[string]interface{}{"room": roomCode, "user": username})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the room socket endpoint.
func (h *RoomHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/sessions/:code/ws", h.ServeWs)
}
