package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"connecto/internal/models"
	"connecto/internal/notifications"
	"connecto/internal/repository"
)

type userRepoStub struct {
	getByIDFn     func(context.Context, uint) (*models.User, error)
	getByEmailFn  func(context.Context, string) (*models.User, error)
	createFn      func(context.Context, *models.User) error
	updateFn      func(context.Context, *models.User) error
	isBannedFn    func(context.Context, uint) (bool, error)
	setRoleFn     func(context.Context, uint, models.Role) error
	listByRolesFn func(context.Context, ...models.Role) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) IsBanned(ctx context.Context, id uint) (bool, error) {
	return s.isBannedFn(ctx, id)
}
func (s *userRepoStub) SetRole(ctx context.Context, id uint, role models.Role) error {
	return s.setRoleFn(ctx, id, role)
}
func (s *userRepoStub) ListByRoles(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	return s.listByRolesFn(ctx, roles...)
}

// usersRepo serves GetByID from a fixed set; unknown IDs are NOT_FOUND.
func usersRepo(users ...*models.User) *userRepoStub {
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		u, ok := byID[id]
		if !ok {
			return nil, models.NewNotFoundError("User", id)
		}
		cp := *u
		return &cp, nil
	}
	return repo
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:     func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id, Role: models.RoleUser}, nil },
		getByEmailFn:  func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:      func(context.Context, *models.User) error { return nil },
		updateFn:      func(context.Context, *models.User) error { return nil },
		isBannedFn:    func(context.Context, uint) (bool, error) { return false, nil },
		setRoleFn:     func(context.Context, uint, models.Role) error { return nil },
		listByRolesFn: func(context.Context, ...models.Role) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	createFn        func(context.Context, uint, uint) error
	existsFn        func(context.Context, uint, uint) (bool, error)
	deleteFn        func(context.Context, uint, uint) error
	listFollowingFn func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
	listFollowersFn func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
	suggestUsersFn  func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) error {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.listFollowingFn(ctx, userID, page, size)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.listFollowersFn(ctx, userID, page, size)
}
func (s *followRepoStub) SuggestUsers(ctx context.Context, actorID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.suggestUsersFn(ctx, actorID, page, size)
}

func emptyPage(_ context.Context, _ uint, page, size int) (*models.Page[models.UserSummary], error) {
	return models.NewPage[models.UserSummary](nil, page, size, 0), nil
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:        func(context.Context, uint, uint) error { return nil },
		existsFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		deleteFn:        func(context.Context, uint, uint) error { return nil },
		listFollowingFn: emptyPage,
		listFollowersFn: emptyPage,
		suggestUsersFn:  emptyPage,
	}
}

type requestRepoStub struct {
	createFn       func(context.Context, uint, uint) error
	existsFn       func(context.Context, uint, uint) (bool, error)
	deleteFn       func(context.Context, uint, uint) (int64, error)
	listSentFn     func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
	listReceivedFn func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
	resolveFn      func(context.Context, uint, uint, bool) (repository.ResolveOutcome, error)
}

func (s *requestRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *requestRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *requestRepoStub) Delete(ctx context.Context, followerID, followedID uint) (int64, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *requestRepoStub) ListSent(ctx context.Context, followerID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.listSentFn(ctx, followerID, page, size)
}
func (s *requestRepoStub) ListReceived(ctx context.Context, followedID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.listReceivedFn(ctx, followedID, page, size)
}
func (s *requestRepoStub) Resolve(ctx context.Context, requesterID, targetID uint, accept bool) (repository.ResolveOutcome, error) {
	return s.resolveFn(ctx, requesterID, targetID, accept)
}

func noopRequestRepo() *requestRepoStub {
	return &requestRepoStub{
		createFn:       func(context.Context, uint, uint) error { return nil },
		existsFn:       func(context.Context, uint, uint) (bool, error) { return false, nil },
		deleteFn:       func(context.Context, uint, uint) (int64, error) { return 0, nil },
		listSentFn:     emptyPage,
		listReceivedFn: emptyPage,
		resolveFn: func(context.Context, uint, uint, bool) (repository.ResolveOutcome, error) {
			return repository.ResolveRejected, nil
		},
	}
}

type blockRepoStub struct {
	existsFn        func(context.Context, uint, uint) (bool, error)
	blockAndSeverFn func(context.Context, uint, uint) error
	deleteFn        func(context.Context, uint, uint) error
	listBlockedFn   func(context.Context, uint, int, int) (*models.Page[models.UserSummary], error)
}

func (s *blockRepoStub) Exists(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.existsFn(ctx, blockerID, blockedID)
}
func (s *blockRepoStub) BlockAndSever(ctx context.Context, blockerID, blockedID uint) error {
	return s.blockAndSeverFn(ctx, blockerID, blockedID)
}
func (s *blockRepoStub) Delete(ctx context.Context, blockerID, blockedID uint) error {
	return s.deleteFn(ctx, blockerID, blockedID)
}
func (s *blockRepoStub) ListBlocked(ctx context.Context, blockerID uint, page, size int) (*models.Page[models.UserSummary], error) {
	return s.listBlockedFn(ctx, blockerID, page, size)
}

func noopBlockRepo() *blockRepoStub {
	return &blockRepoStub{
		existsFn:        func(context.Context, uint, uint) (bool, error) { return false, nil },
		blockAndSeverFn: func(context.Context, uint, uint) error { return nil },
		deleteFn:        func(context.Context, uint, uint) error { return nil },
		listBlockedFn:   emptyPage,
	}
}

// edges answers Exists for a fixed set of directed (from, to) pairs.
func edges(pairs ...[2]uint) func(context.Context, uint, uint) (bool, error) {
	set := make(map[[2]uint]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return func(_ context.Context, from, to uint) (bool, error) {
		return set[[2]uint{from, to}], nil
	}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (e *recordingEmitter) Emit(_ context.Context, event notifications.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) Events() []notifications.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notifications.Event(nil), e.events...)
}

var errDB = errors.New("db down")

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *models.AppError, got %#v", err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%q)", code, appErr.Code, appErr.Message)
	}
	if message != "" && appErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, appErr.Message)
	}
}
