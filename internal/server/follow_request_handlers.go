package server

import (
	"connecto/internal/models"
	"connecto/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetReceivedFollowRequests handles GET /api/follow-requests/received
func (s *Server) GetReceivedFollowRequests(c *fiber.Ctx) error {
	p := s.pagination(c)
	page, err := s.requestService.ListReceived(c.UserContext(), currentUserID(c), p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetSentFollowRequests handles GET /api/follow-requests/sent
func (s *Server) GetSentFollowRequests(c *fiber.Ctx) error {
	p := s.pagination(c)
	page, err := s.requestService.ListSent(c.UserContext(), currentUserID(c), p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CancelFollowRequest handles DELETE /api/follow-requests/sent/:id
func (s *Server) CancelFollowRequest(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.requestService.CancelSent(c.UserContext(), currentUserID(c), subjectID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RespondToFollowRequest handles POST /api/follow-requests/:id/respond
// where :id is the requester.
func (s *Server) RespondToFollowRequest(c *fiber.Ctx) error {
	requesterID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	action, err := service.ParseRequestAction(req.Action)
	if err != nil {
		return respondError(c, err)
	}

	msg, err := s.requestService.Respond(c.UserContext(), currentUserID(c), requesterID, action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messageResponse{Message: msg})
}
