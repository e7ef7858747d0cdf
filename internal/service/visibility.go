package service

import (
	"context"

	"connecto/internal/models"
	"connecto/internal/observability"
	"connecto/internal/repository"
)

const (
	msgPrivateNotFollowing = "private user you are not following"
	msgYouBlocked          = "you blocked this user"
	msgBlockedYou          = "this user blocked you"
)

// Visibility decides whether a viewer may see a user's content and lists.
type Visibility struct {
	follows repository.FollowRepository
	blocks  repository.BlockRepository
}

// NewVisibility returns a new Visibility.
func NewVisibility(follows repository.FollowRepository, blocks repository.BlockRepository) *Visibility {
	return &Visibility{follows: follows, blocks: blocks}
}

// CanAccess returns nil when viewerID may see content owned by owner. The
// privacy check runs first, so a private owner the viewer does not follow is
// refused for that reason whatever the block state.
//
// Callers skip the check when the viewer is the owner.
func (v *Visibility) CanAccess(ctx context.Context, viewerID uint, owner *models.User) error {
	if owner.IsPrivate {
		following, err := v.follows.Exists(ctx, viewerID, owner.ID)
		if err != nil {
			return err
		}
		if !following {
			return deny("access", "private", models.NewForbiddenError(msgPrivateNotFollowing))
		}
	}
	return v.checkBlocks(ctx, "access", viewerID, owner.ID, models.NewForbiddenError(msgYouBlocked))
}

// CanViewList guards the follower and following listings of target. It uses
// the same order as CanAccess, but a block the viewer placed is a CONFLICT.
func (v *Visibility) CanViewList(ctx context.Context, viewerID uint, target *models.User) error {
	if viewerID == target.ID {
		return nil
	}
	if target.IsPrivate {
		following, err := v.follows.Exists(ctx, viewerID, target.ID)
		if err != nil {
			return err
		}
		if !following {
			return deny("list", "private", models.NewForbiddenError(msgPrivateNotFollowing))
		}
	}
	return v.checkBlocks(ctx, "list", viewerID, target.ID, models.NewConflictError(msgYouBlocked))
}

func (v *Visibility) checkBlocks(ctx context.Context, check string, viewerID, ownerID uint, selfBlocked error) error {
	blocked, err := v.blocks.Exists(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if blocked {
		return deny(check, "viewer_blocked", selfBlocked)
	}

	blocked, err = v.blocks.Exists(ctx, ownerID, viewerID)
	if err != nil {
		return err
	}
	if blocked {
		return deny(check, "owner_blocked", models.NewForbiddenError(msgBlockedYou))
	}
	return nil
}

func deny(check, reason string, err error) error {
	observability.VisibilityDenials.WithLabelValues(check, reason).Inc()
	return err
}
