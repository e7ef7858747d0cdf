package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"connecto/internal/middleware"
	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const wsTicketTTL = 30 * time.Second

func wsTicketKey(ticket string) string {
	return "ws_ticket:" + ticket
}

func socketErrorFrame(err error) []byte {
	frame, mErr := json.Marshal(models.ErrorResponse{Error: err.Error()})
	if mErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return frame
}

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := s.pagination(c)
	page, err := s.notificationService.List(c.UserContext(), currentUserID(c), p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetUnreadNotificationCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	count, err := s.notificationService.CountUnread(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkAllNotificationsRead handles PATCH /api/notifications/mark-all-read
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

// IssueWSTicket handles POST /api/notifications/ws-ticket. The ticket is
// single-use and expires after wsTicketTTL.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil || s.hub == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errors.New("realtime notifications unavailable")))
	}

	ticket := uuid.NewString()
	userID := strconv.FormatUint(uint64(currentUserID(c)), 10)
	if err := s.redis.Set(c.UserContext(), wsTicketKey(ticket), userID, wsTicketTTL).Err(); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebSocketTicketRequired consumes the ?ticket= query parameter and stores
// the ticket owner in c.Locals("userID"). Non-upgrade requests are refused.
func (s *Server) WebSocketTicketRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		ticket := c.Query("ticket")
		if ticket == "" || s.redis == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("WebSocket ticket required"))
		}

		raw, err := s.redis.GetDel(c.UserContext(), wsTicketKey(ticket)).Result()
		if errors.Is(err, redis.Nil) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))
		return c.Next()
	}
}

// NotificationSocket streams the caller's notifications as JSON text frames.
func (s *Server) NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, socketErrorFrame(err))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
