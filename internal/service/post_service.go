package service

import (
	"context"
	"time"

	"connecto/internal/models"
	"connecto/internal/notifications"
	"connecto/internal/observability"
	"connecto/internal/repository"
	"connecto/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostService provides post, repost, bookmark and reaction business logic.
// Every read or interaction on another user's post passes through Visibility.
type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	visibility *Visibility
	emitter    notifications.Emitter
}

// RepostView is the API representation of a created repost.
type RepostView struct {
	ID           uint      `json:"id"`
	ReposterID   uint      `json:"reposter_id"`
	ReposterName string    `json:"reposter_name"`
	PostID       uint      `json:"post_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	visibility *Visibility,
	emitter notifications.Emitter,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		visibility: visibility,
		emitter:    emitter,
	}
}

// CreatePost stores a new post authored by userID.
func (s *PostService) CreatePost(ctx context.Context, userID uint, content string) (*models.PostView, error) {
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{UserID: userID, Content: content}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return postView(post, author), nil
}

// UpdatePost replaces the content of a post owned by userID.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint, content string) (*models.PostView, error) {
	if err := validation.ValidatePostContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("you can only edit your posts")
	}
	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if post.Content != content {
		post.Content = content
		if err := s.postRepo.Update(ctx, post); err != nil {
			return nil, err
		}
	}
	return postView(post, author), nil
}

// GetPost returns a post the viewer is allowed to see.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.PostView, error) {
	post, owner, err := s.accessiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	return postView(post, owner), nil
}

// ListUserPosts returns ownerID's posts, newest first, if the viewer may see them.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID, ownerID uint, page, size int) (*models.Page[models.PostView], error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if viewerID != ownerID {
		if err := s.visibility.CanAccess(ctx, viewerID, owner); err != nil {
			return nil, err
		}
	}
	return s.postRepo.ListByUser(ctx, ownerID, page, size)
}

// ListReposters returns who reposted postID, newest first. Reposters on
// either side of a block with the viewer are left out.
func (s *PostService) ListReposters(ctx context.Context, viewerID, postID uint, page, size int) (*models.Page[models.UserSummary], error) {
	if _, _, err := s.accessiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.ListReposters(ctx, postID, viewerID, page, size)
}

// SavePost bookmarks a post. Saving twice is a no-op.
func (s *PostService) SavePost(ctx context.Context, viewerID, postID uint) error {
	if _, _, err := s.accessiblePost(ctx, viewerID, postID); err != nil {
		return err
	}
	return s.postRepo.Save(ctx, viewerID, postID)
}

// UnsavePost removes a bookmark. The post must still exist.
func (s *PostService) UnsavePost(ctx context.Context, viewerID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Unsave(ctx, viewerID, postID)
}

// LikePost records a LIKE, replacing a DISLIKE.
func (s *PostService) LikePost(ctx context.Context, viewerID, postID uint) error {
	return s.react(ctx, viewerID, postID, models.ReactionLike)
}

// DislikePost records a DISLIKE, replacing a LIKE.
func (s *PostService) DislikePost(ctx context.Context, viewerID, postID uint) error {
	return s.react(ctx, viewerID, postID, models.ReactionDislike)
}

func (s *PostService) react(ctx context.Context, viewerID, postID uint, reaction models.ReactionType) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "React",
		attribute.Int64("post.id", int64(postID)),
		attribute.String("reaction", string(reaction)),
	)
	defer func() { observability.EndSpan(span, err) }()

	post, _, err := s.accessiblePost(ctx, viewerID, postID)
	if err != nil {
		return err
	}
	changed, err := s.postRepo.SetReaction(ctx, viewerID, postID, reaction)
	if err != nil {
		return err
	}
	if !changed || post.UserID == viewerID {
		return nil
	}

	notificationType := models.NotificationLikedPost
	if reaction == models.ReactionDislike {
		notificationType = models.NotificationDislikedPost
	}
	s.emitter.Emit(ctx, notifications.Event{
		ReceiverID:  post.UserID,
		SenderID:    viewerID,
		Type:        notificationType,
		ReferenceID: &post.ID,
	})
	return nil
}

// Repost shares postID on behalf of viewerID. Posts of private users can only
// be reposted by their owner.
func (s *PostService) Repost(ctx context.Context, viewerID, postID uint) (_ *RepostView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Repost", attribute.Int64("post.id", int64(postID)))
	defer func() {
		observability.RecordRelationship("repost", outcomeOf(err))
		observability.EndSpan(span, err)
	}()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	reposter, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	own := post.UserID == viewerID
	if !own {
		owner, err := s.userRepo.GetByID(ctx, post.UserID)
		if err != nil {
			return nil, err
		}
		if owner.IsPrivate {
			return nil, models.NewForbiddenError("cannot repost a post that belongs to a private user")
		}
		if err := s.visibility.CanAccess(ctx, viewerID, owner); err != nil {
			return nil, err
		}
	}

	repost := &models.Repost{ReposterID: viewerID, PostID: postID}
	if err := s.postRepo.CreateRepost(ctx, repost); err != nil {
		return nil, err
	}

	if !own {
		s.emitter.Emit(ctx, notifications.Event{
			ReceiverID:  post.UserID,
			SenderID:    viewerID,
			Type:        models.NotificationSharedPost,
			ReferenceID: &post.ID,
		})
	}

	return &RepostView{
		ID:           repost.ID,
		ReposterID:   viewerID,
		ReposterName: reposter.Name,
		PostID:       postID,
		CreatedAt:    repost.CreatedAt,
	}, nil
}

// DeleteRepost removes a repost made by viewerID.
func (s *PostService) DeleteRepost(ctx context.Context, viewerID, repostID uint) error {
	repost, err := s.postRepo.GetRepost(ctx, repostID)
	if err != nil {
		return err
	}
	if repost.ReposterID != viewerID {
		return models.NewForbiddenError("you can only delete your reposts")
	}
	return s.postRepo.DeleteRepost(ctx, repostID)
}

// accessiblePost loads a post and its owner and applies the visibility check
// unless the viewer is the owner.
func (s *PostService) accessiblePost(ctx context.Context, viewerID, postID uint) (*models.Post, *models.User, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	owner, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		return nil, nil, err
	}
	if viewerID != owner.ID {
		if err := s.visibility.CanAccess(ctx, viewerID, owner); err != nil {
			return nil, nil, err
		}
	}
	return post, owner, nil
}

func postView(post *models.Post, author *models.User) *models.PostView {
	return &models.PostView{
		ID:        post.ID,
		Content:   post.Content,
		UserID:    post.UserID,
		UserName:  author.Name,
		CreatedAt: post.CreatedAt,
	}
}
