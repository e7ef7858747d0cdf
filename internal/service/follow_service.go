package service

import (
	"context"

	"connecto/internal/featureflags"
	"connecto/internal/models"
	"connecto/internal/notifications"
	"connecto/internal/observability"
	"connecto/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FollowStatus is the result kind of a follow attempt.
type FollowStatus string

const (
	// FollowRequestSent means the subject is private and a request was stored.
	FollowRequestSent FollowStatus = "REQUEST_SENT"
	// FollowFollowed means the follow edge was created.
	FollowFollowed FollowStatus = "FOLLOWED"
)

// FollowOutcome is returned by a successful Follow.
type FollowOutcome struct {
	Status  FollowStatus `json:"status"`
	Message string       `json:"message"`
}

// FollowService provides follow, unfollow and suggestion business logic.
type FollowService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	requestRepo repository.FollowRequestRepository
	blockRepo   repository.BlockRepository
	visibility  *Visibility
	emitter     notifications.Emitter
	flags       *featureflags.Manager
}

// NewFollowService returns a new FollowService. flags may be nil.
func NewFollowService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	requestRepo repository.FollowRequestRepository,
	blockRepo repository.BlockRepository,
	emitter notifications.Emitter,
	flags *featureflags.Manager,
) *FollowService {
	return &FollowService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		requestRepo: requestRepo,
		blockRepo:   blockRepo,
		visibility:  NewVisibility(followRepo, blockRepo),
		emitter:     emitter,
		flags:       flags,
	}
}

// Follow makes actorID follow subjectID, or files a follow request when the
// subject is private.
func (s *FollowService) Follow(ctx context.Context, actorID, subjectID uint) (out FollowOutcome, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FollowService", "Follow", pairAttrs(actorID, subjectID)...)
	defer func() {
		observability.RecordRelationship("follow", outcomeOf(err))
		observability.EndSpan(span, err)
	}()

	if actorID == subjectID {
		return FollowOutcome{}, models.NewInvalidArgumentError("cannot follow self")
	}

	subject, err := s.userRepo.GetByID(ctx, subjectID)
	if err != nil {
		return FollowOutcome{}, err
	}

	blocked, err := s.blockRepo.Exists(ctx, actorID, subjectID)
	if err != nil {
		return FollowOutcome{}, err
	}
	if blocked {
		return FollowOutcome{}, models.NewConflictError("cannot follow a user you blocked")
	}
	blocked, err = s.blockRepo.Exists(ctx, subjectID, actorID)
	if err != nil {
		return FollowOutcome{}, err
	}
	if blocked {
		return FollowOutcome{}, models.NewForbiddenError("cannot follow a user that blocked you")
	}

	following, err := s.followRepo.Exists(ctx, actorID, subjectID)
	if err != nil {
		return FollowOutcome{}, err
	}
	if following {
		return FollowOutcome{}, models.NewConflictError("already following this user")
	}

	if subject.IsPrivate {
		requested, err := s.requestRepo.Exists(ctx, actorID, subjectID)
		if err != nil {
			return FollowOutcome{}, err
		}
		if requested {
			return FollowOutcome{}, models.NewConflictError("already sent a follow request")
		}
		if err := s.requestRepo.Create(ctx, actorID, subjectID); err != nil {
			return FollowOutcome{}, err
		}
		s.emitter.Emit(ctx, notifications.Event{
			ReceiverID: subjectID,
			SenderID:   actorID,
			Type:       models.NotificationFollowRequest,
		})
		return FollowOutcome{Status: FollowRequestSent, Message: "Follow request sent"}, nil
	}

	if err := s.followRepo.Create(ctx, actorID, subjectID); err != nil {
		return FollowOutcome{}, err
	}
	s.emitter.Emit(ctx, notifications.Event{
		ReceiverID: subjectID,
		SenderID:   actorID,
		Type:       models.NotificationNewFollower,
	})
	return FollowOutcome{Status: FollowFollowed, Message: "Follow was successful"}, nil
}

// Unfollow removes Follow(actor -> subject). Unfollowing a user that is not
// followed succeeds.
func (s *FollowService) Unfollow(ctx context.Context, actorID, subjectID uint) (err error) {
	defer func() { observability.RecordRelationship("unfollow", outcomeOf(err)) }()

	if actorID == subjectID {
		return models.NewInvalidArgumentError("cannot unfollow self")
	}
	if _, err := s.userRepo.GetByID(ctx, subjectID); err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, actorID, subjectID)
}

// RemoveFollower deletes Follow(follower -> actor). Only private users may
// remove their followers.
func (s *FollowService) RemoveFollower(ctx context.Context, actorID, followerID uint) (err error) {
	defer func() { observability.RecordRelationship("remove_follower", outcomeOf(err)) }()

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsPrivate {
		return models.NewForbiddenError("public users cannot remove a follower")
	}
	if actorID == followerID {
		return models.NewInvalidArgumentError("cannot remove self as a follower")
	}
	if _, err := s.userRepo.GetByID(ctx, followerID); err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, followerID, actorID)
}

// ListFollowing returns the users targetID follows, newest first.
func (s *FollowService) ListFollowing(ctx context.Context, viewerID, targetID uint, page, size int) (*models.Page[models.UserSummary], error) {
	if err := s.checkListAccess(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, targetID, page, size)
}

// ListFollowers returns the users following targetID, newest first.
func (s *FollowService) ListFollowers(ctx context.Context, viewerID, targetID uint, page, size int) (*models.Page[models.UserSummary], error) {
	if err := s.checkListAccess(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, targetID, page, size)
}

func (s *FollowService) checkListAccess(ctx context.Context, viewerID, targetID uint) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	return s.visibility.CanViewList(ctx, viewerID, target)
}

// Suggest returns users followed by people actorID follows, excluding anyone
// actorID already follows, has requested, or shares a block with.
func (s *FollowService) Suggest(ctx context.Context, actorID uint, page, size int) (_ *models.Page[models.UserSummary], err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FollowService", "Suggest", attribute.Int64("actor.id", int64(actorID)))
	defer func() { observability.EndSpan(span, err) }()

	if !s.flags.EnabledOr(featureflags.FollowSuggestions, actorID, true) {
		return models.NewPage[models.UserSummary](nil, page, size, 0), nil
	}
	return s.followRepo.SuggestUsers(ctx, actorID, page, size)
}
