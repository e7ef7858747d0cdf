package server

import (
	"context"

	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content string `json:"content"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), currentUserID(c), postID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ownerID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := s.pagination(c)
	page, err := s.postService.ListUserPosts(c.UserContext(), currentUserID(c), ownerID, p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetReposters handles GET /api/posts/:id/reposts
func (s *Server) GetReposters(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := s.pagination(c)
	page, err := s.postService.ListReposters(c.UserContext(), currentUserID(c), postID, p.Page, p.Size)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	return s.postAction(c, s.postService.SavePost, func(c *fiber.Ctx) error {
		return c.JSON(messageResponse{Message: "Post saved successfully"})
	})
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	return s.postAction(c, s.postService.UnsavePost, noContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.postAction(c, s.postService.LikePost, noContent)
}

// DislikePost handles POST /api/posts/:id/dislike
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.postAction(c, s.postService.DislikePost, noContent)
}

func (s *Server) postAction(c *fiber.Ctx, action func(ctx context.Context, viewerID, postID uint) error, done fiber.Handler) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := action(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondError(c, err)
	}
	return done(c)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Repost handles POST /api/reposts/:postId
func (s *Server) Repost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	repost, err := s.postService.Repost(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(repost)
}

// DeleteRepost handles DELETE /api/reposts/:id
func (s *Server) DeleteRepost(c *fiber.Ctx) error {
	repostID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteRepost(c.UserContext(), currentUserID(c), repostID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
