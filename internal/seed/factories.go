// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"connecto/internal/models"
	"connecto/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account receives.
const DefaultPassword = "Password123!"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// bcrypt is slow; hash once per factory
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB. db may be
// nil when opts.DryRun is set.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:   db,
		opts: opts,
		// #nosec G404: acceptable for seeding
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1000,
	}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DefaultPassword
	}
	if f.passwordHash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("seed: bcrypt failed, storing plain password: %v", err)
			return DefaultPassword
		}
		f.passwordHash = string(hashed)
	}
	return f.passwordHash
}

// BuildUser constructs a sample user without persisting it. seq keeps the
// email unique within a run.
func (f *Factory) BuildUser(seq int, overrides ...func(*models.User)) *models.User {
	name := gofakeit.Name()
	if len(name) > validation.MaxNameLength {
		name = name[:validation.MaxNameLength]
	}
	user := &models.User{
		Name:       name,
		Email:      fmt.Sprintf("%s.%d@example.com", strings.ToLower(gofakeit.Username()), seq),
		Password:   f.password(),
		Gender:     gofakeit.RandomString([]string{"MALE", "FEMALE"}),
		Location:   gofakeit.City(),
		Bio:        gofakeit.Sentence(10),
		PictureURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		IsPrivate:  f.rng.Float64() < f.opts.PrivateRatio,
		Role:       models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(seq int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(seq, overrides...)

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s private=%v", user.Email, user.IsPrivate)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for user with a created_at spread over the
// last MaxDays days. It is not persisted.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	content := gofakeit.Paragraph(1, f.rng.Intn(4)+1, 12, " ")
	if len(content) > validation.MaxPostLength {
		content = content[:validation.MaxPostLength]
	}
	post := &models.Post{
		Content: content,
		UserID:  user.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in batches of opts.BatchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.CreateInBatches(posts, batch).Error
}

// CreateFollow persists an active follower -> followed edge.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	return f.create(&models.Follow{FollowerID: follower.ID, FollowedID: followed.ID})
}

// CreateFollowRequest persists a pending request from follower to a private user.
func (f *Factory) CreateFollowRequest(follower, followed *models.User) error {
	return f.create(&models.FollowRequest{FollowerID: follower.ID, FollowedID: followed.ID})
}

// CreateBlock persists a blocker -> blocked edge. Callers are responsible
// for removing follows and requests between the pair first.
func (f *Factory) CreateBlock(blocker, blocked *models.User) error {
	return f.create(&models.Block{BlockerID: blocker.ID, BlockedID: blocked.ID})
}

// CreateReaction persists user's reaction to post.
func (f *Factory) CreateReaction(user *models.User, post *models.Post, reaction models.ReactionType) error {
	return f.create(&models.PostReaction{UserID: user.ID, PostID: post.ID, Type: reaction})
}

// CreateRepost persists a repost of post by user.
func (f *Factory) CreateRepost(user *models.User, post *models.Post) error {
	return f.create(&models.Repost{ReposterID: user.ID, PostID: post.ID})
}

func (f *Factory) create(value any) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(value).Error
}
