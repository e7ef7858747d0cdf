package service

import (
	"context"

	"connecto/internal/models"
	"connecto/internal/observability"
	"connecto/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// BlockService provides block and unblock business logic.
type BlockService struct {
	userRepo  repository.UserRepository
	blockRepo repository.BlockRepository
}

// NewBlockService returns a new BlockService.
func NewBlockService(userRepo repository.UserRepository, blockRepo repository.BlockRepository) *BlockService {
	return &BlockService{
		userRepo:  userRepo,
		blockRepo: blockRepo,
	}
}

// Block records actorID blocking subjectID and severs every follow and
// follow request between them.
func (s *BlockService) Block(ctx context.Context, actorID, subjectID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "BlockService", "Block", pairAttrs(actorID, subjectID)...)
	defer func() {
		observability.RecordRelationship("block", outcomeOf(err))
		observability.EndSpan(span, err)
	}()

	if actorID == subjectID {
		return models.NewInvalidArgumentError("cannot block self")
	}

	subject, err := s.userRepo.GetByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.IsAdminTier() {
		return models.NewForbiddenError("cannot block admins")
	}

	exists, err := s.blockRepo.Exists(ctx, actorID, subjectID)
	if err != nil {
		return err
	}
	if exists {
		return models.NewConflictError("already blocked")
	}

	return s.blockRepo.BlockAndSever(ctx, actorID, subjectID)
}

// Unblock removes Block(actor -> subject). Unblocking a user that is not
// blocked succeeds.
func (s *BlockService) Unblock(ctx context.Context, actorID, subjectID uint) (err error) {
	defer func() { observability.RecordRelationship("unblock", outcomeOf(err)) }()
	return s.blockRepo.Delete(ctx, actorID, subjectID)
}

// IsBlocked reports whether a blocked b. The check is directional.
func (s *BlockService) IsBlocked(ctx context.Context, a, b uint) (bool, error) {
	return s.blockRepo.Exists(ctx, a, b)
}

// ListBlocked returns the users actorID has blocked, newest first.
func (s *BlockService) ListBlocked(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.blockRepo.ListBlocked(ctx, actorID, page, size)
}

func pairAttrs(actorID, subjectID uint) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("actor.id", int64(actorID)),
		attribute.Int64("subject.id", int64(subjectID)),
	}
}

// outcomeOf maps err to the metric outcome label, "" for success.
func outcomeOf(err error) string {
	if err == nil {
		return ""
	}
	return models.ErrorCode(err)
}
