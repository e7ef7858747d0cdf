package server

import (
	"context"

	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/follows/:id
// Public users are followed immediately; private users receive a request.
func (s *Server) Follow(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	out, err := s.followService.Follow(c.UserContext(), currentUserID(c), subjectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Unfollow handles DELETE /api/follows/:id
func (s *Server) Unfollow(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), subjectID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveFollower handles DELETE /api/follows/followers/:id
func (s *Server) RemoveFollower(c *fiber.Ctx) error {
	followerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.RemoveFollower(c.UserContext(), currentUserID(c), followerID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowing handles GET /api/follows/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	return s.listRelations(c, s.followService.ListFollowing)
}

// GetFollowers handles GET /api/follows/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	return s.listRelations(c, s.followService.ListFollowers)
}

type relationLister func(ctx context.Context, viewerID, targetID uint, page, size int) (*models.Page[models.UserSummary], error)

func (s *Server) listRelations(c *fiber.Ctx, list relationLister) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := s.pagination(c)
	page, err := list(c.UserContext(), currentUserID(c), targetID, p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetFollowSuggestions handles GET /api/follows/suggestions
func (s *Server) GetFollowSuggestions(c *fiber.Ctx) error {
	p := s.pagination(c)
	page, err := s.followService.Suggest(c.UserContext(), currentUserID(c), p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
