package seed

import (
	"fmt"
	"log"

	"connecto/internal/database"
	"connecto/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	FollowsPerUser int
	NumBlocks      int
	// PrivateRatio is the share of users created with a private profile.
	PrivateRatio float64
	ShouldClean  bool
	SkipBcrypt   bool
	DryRun       bool
	BatchSize    int
	MaxDays      int
	// RandSeed makes a run reproducible. Zero seeds from the clock.
	RandSeed int64
}

// DefaultOptions is what cmd/seed uses when no flags are given.
func DefaultOptions() Options {
	return Options{
		NumUsers:       50,
		NumPosts:       200,
		FollowsPerUser: 8,
		NumBlocks:      5,
		PrivateRatio:   0.3,
		ShouldClean:    true,
		BatchSize:      100,
		MaxDays:        90,
	}
}

// Seeder populates a database with a consistent social graph: a follow
// never coexists with a pending request for the same pair, requests only
// target private users, and blocked pairs share no edges.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	s := NewSeeder(db, opts)
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Printf("⚠️  Warning: could not clear existing data, continuing: %v", err)
		}
	}

	users, err := s.SeedSocialMesh(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to seed social mesh: %w", err)
	}
	log.Printf("✓ %d users with follows and requests", len(users))

	blocked, err := s.SeedBlocks(users, opts.NumBlocks)
	if err != nil {
		return fmt.Errorf("failed to seed blocks: %w", err)
	}
	log.Printf("✓ %d blocks", blocked)

	posts, err := s.SeedEngagement(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}
	log.Printf("✓ %d posts with reactions and reposts", len(posts))

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// ClearAll removes every row from the schema-managed tables.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	log.Println("🗑️  Clearing existing data...")

	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE notifications, post_reactions, saved_posts, reposts, posts,
			blocks, follow_requests, follows, users RESTART IDENTITY CASCADE`).Error
	}

	all := database.PersistentModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSocialMesh creates count users and wires each one to follow up to
// FollowsPerUser others. Following a private user produces a follow
// request roughly half of the time instead of an accepted follow.
func (s *Seeder) SeedSocialMesh(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser(i)
		if err != nil {
			log.Printf("Failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)
		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	if len(users) < 2 {
		return users, nil
	}

	perUser := s.opts.FollowsPerUser
	if perUser <= 0 {
		perUser = 5
	}
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}

	rng := s.factory.rng
	for _, follower := range users {
		for _, idx := range rng.Perm(len(users))[:perUser+1] {
			followed := users[idx]
			if followed.ID == follower.ID {
				continue
			}
			var err error
			if followed.IsPrivate && rng.Intn(2) == 0 {
				err = s.factory.CreateFollowRequest(follower, followed)
			} else {
				err = s.factory.CreateFollow(follower, followed)
			}
			if err != nil {
				return nil, fmt.Errorf("edge %d -> %d: %w", follower.ID, followed.ID, err)
			}
		}
	}
	return users, nil
}

// SeedBlocks creates up to count blocks between random pairs, severing any
// follows and requests between each pair first. It returns how many blocks
// were created.
func (s *Seeder) SeedBlocks(users []*models.User, count int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	rng := s.factory.rng
	seen := make(map[[2]uint]bool)
	created := 0
	for attempts := 0; created < count && attempts < count*10; attempts++ {
		blocker := users[rng.Intn(len(users))]
		blocked := users[rng.Intn(len(users))]
		if blocker.ID == blocked.ID || blocked.IsAdminTier() {
			continue
		}
		key := [2]uint{blocker.ID, blocked.ID}
		if blocker.ID > blocked.ID {
			key = [2]uint{blocked.ID, blocker.ID}
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := s.severPair(blocker.ID, blocked.ID); err != nil {
			return created, err
		}
		if err := s.factory.CreateBlock(blocker, blocked); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) severPair(a, b uint) error {
	if s.opts.DryRun {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		pair := "(follower_id = ? AND followed_id = ?) OR (follower_id = ? AND followed_id = ?)"
		if err := tx.Where(pair, a, b, b, a).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Where(pair, a, b, b, a).Delete(&models.FollowRequest{}).Error
	})
}

// SeedEngagement creates count posts spread across users, then adds
// reactions and reposts. Posts owned by private users are only reposted by
// their owners.
func (s *Seeder) SeedEngagement(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 || count <= 0 {
		return nil, nil
	}
	rng := s.factory.rng

	owners := make(map[uint]*models.User, len(users))
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rng.Intn(len(users))]
		owners[author.ID] = author
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}

	for _, post := range posts {
		reactors := rng.Perm(len(users))[:rng.Intn(min(len(users), 6))]
		for _, idx := range reactors {
			reaction := models.ReactionLike
			if rng.Intn(4) == 0 {
				reaction = models.ReactionDislike
			}
			if err := s.factory.CreateReaction(users[idx], post, reaction); err != nil {
				return nil, err
			}
		}

		if rng.Intn(5) != 0 {
			continue
		}
		reposter := users[rng.Intn(len(users))]
		if owners[post.UserID].IsPrivate {
			reposter = owners[post.UserID]
		}
		if err := s.factory.CreateRepost(reposter, post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}
