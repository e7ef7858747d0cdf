package service

import (
	"context"
	"strings"

	"connecto/internal/models"
	"connecto/internal/notifications"
	"connecto/internal/observability"
	"connecto/internal/repository"
)

// RequestAction is the answer a private user gives to a follow request.
type RequestAction string

const (
	ActionAccept RequestAction = "ACCEPT"
	ActionReject RequestAction = "REJECT"
)

// ParseRequestAction accepts ACCEPT or REJECT in any case.
func ParseRequestAction(raw string) (RequestAction, error) {
	switch action := RequestAction(strings.ToUpper(strings.TrimSpace(raw))); action {
	case ActionAccept, ActionReject:
		return action, nil
	}
	return "", models.NewValidationError("action must be ACCEPT or REJECT")
}

const msgPublicNoRequests = "public users do not have follow requests"

// FollowRequestService handles pending follow requests to private users.
type FollowRequestService struct {
	userRepo    repository.UserRepository
	requestRepo repository.FollowRequestRepository
	emitter     notifications.Emitter
}

// NewFollowRequestService returns a new FollowRequestService.
func NewFollowRequestService(
	userRepo repository.UserRepository,
	requestRepo repository.FollowRequestRepository,
	emitter notifications.Emitter,
) *FollowRequestService {
	return &FollowRequestService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		emitter:     emitter,
	}
}

// Respond accepts or rejects the request requesterID sent to actorID and
// returns the user-facing result message.
func (s *FollowRequestService) Respond(ctx context.Context, actorID, requesterID uint, action RequestAction) (msg string, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "FollowRequestService", "Respond", pairAttrs(actorID, requesterID)...)
	defer func() {
		observability.RecordRelationship("respond", outcomeOf(err))
		observability.EndSpan(span, err)
	}()

	if action != ActionAccept && action != ActionReject {
		return "", models.NewValidationError("action must be ACCEPT or REJECT")
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return "", err
	}
	if !actor.IsPrivate {
		return "", models.NewConflictError(msgPublicNoRequests)
	}
	if actorID == requesterID {
		return "", models.NewInvalidArgumentError("cannot respond to a request from self")
	}
	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		return "", err
	}

	pending, err := s.requestRepo.Exists(ctx, requesterID, actorID)
	if err != nil {
		return "", err
	}
	if !pending {
		return "", models.NewNotFoundMessage("follow request not found")
	}

	outcome, err := s.requestRepo.Resolve(ctx, requesterID, actorID, action == ActionAccept)
	if err != nil {
		return "", err
	}

	switch outcome {
	case repository.ResolveAccepted:
		s.emitter.Emit(ctx, notifications.Event{
			ReceiverID: requesterID,
			SenderID:   actorID,
			Type:       models.NotificationFollowAccepted,
		})
		return "Follow request accepted", nil
	case repository.ResolveAlreadyFollowing:
		return "Target user already follows current user", nil
	default:
		return "Follow request rejected", nil
	}
}

// CancelSent withdraws the request actorID sent to subjectID. Cancelling a
// request that does not exist succeeds.
func (s *FollowRequestService) CancelSent(ctx context.Context, actorID, subjectID uint) (err error) {
	defer func() { observability.RecordRelationship("cancel_request", outcomeOf(err)) }()

	if actorID == subjectID {
		return models.NewInvalidArgumentError("cannot cancel a request to self")
	}
	_, err = s.requestRepo.Delete(ctx, actorID, subjectID)
	return err
}

// ListReceived returns pending requests addressed to actorID, newest first.
func (s *FollowRequestService) ListReceived(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivate {
		return nil, models.NewInvalidArgumentError(msgPublicNoRequests)
	}
	return s.requestRepo.ListReceived(ctx, actorID, page, size)
}

// ListSent returns requests actorID is waiting on, newest first.
func (s *FollowRequestService) ListSent(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.requestRepo.ListSent(ctx, actorID, page, size)
}
