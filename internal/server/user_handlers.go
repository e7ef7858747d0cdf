package server

import (
	"connecto/internal/models"
	"connecto/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// Profiles are visible to every authenticated user; content visibility is
// enforced on posts and relationship lists.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// EditProfile handles PUT /api/users/edit-profile
// Every editable field is overwritten; is_private must be present.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var req struct {
		Name       string `json:"name"`
		Gender     string `json:"gender"`
		Location   string `json:"location"`
		Bio        string `json:"bio"`
		PictureURL string `json:"picture_url"`
		IsPrivate  *bool  `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err := s.userService.EditProfile(c.UserContext(), service.EditProfileInput{
		UserID:     currentUserID(c),
		Name:       req.Name,
		Gender:     req.Gender,
		Location:   req.Location,
		Bio:        req.Bio,
		PictureURL: req.PictureURL,
		IsPrivate:  req.IsPrivate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messageResponse{Message: "Profile updated successfully"})
}
