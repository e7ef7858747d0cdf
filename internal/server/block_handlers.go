package server

import "github.com/gofiber/fiber/v2"

// BlockUser handles POST /api/blocks/:id
func (s *Server) BlockUser(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blockService.Block(c.UserContext(), currentUserID(c), subjectID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(messageResponse{Message: "User blocked successfully"})
}

// UnblockUser handles DELETE /api/blocks/:id
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blockService.Unblock(c.UserContext(), currentUserID(c), subjectID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBlockedUsers handles GET /api/blocks
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	p := s.pagination(c)
	page, err := s.blockService.ListBlocked(c.UserContext(), currentUserID(c), p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
