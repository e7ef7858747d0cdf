package server

import (
	"github.com/gofiber/fiber/v2"
)

type featureFlagsResponse struct {
	UserID    uint              `json:"user_id"`
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/admin/feature-flags. Flags are evaluated
// for the calling admin unless ?user_id= names another account.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if c.Query("user_id") != "" {
		id, err := s.parseQueryID(c, "user_id")
		if err != nil {
			return nil
		}
		userID = id
	}

	return c.JSON(featureFlagsResponse{
		UserID:    userID,
		Raw:       s.featureFlags.Raw(),
		Evaluated: s.featureFlags.Snapshot(userID),
	})
}
