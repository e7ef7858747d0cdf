// Command main runs the database seeder for Connecto.
package main

import (
	"flag"
	"log"

	"connecto/internal/config"
	"connecto/internal/database"
	"connecto/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follow edges per user")
	blocks := flag.Int("blocks", defaults.NumBlocks, "Number of blocks to create")
	private := flag.Float64("private-ratio", defaults.PrivateRatio, "Share of users with a private profile")
	shouldClean := flag.Bool("clean", defaults.ShouldClean, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing (development only)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	randSeed := flag.Int64("seed", 0, "Random seed for a reproducible run (0 = clock)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, %d follows/user, %d blocks, clean=%v\n",
		*numUsers, *numPosts, *follows, *blocks, *shouldClean)

	opts := defaults
	opts.NumUsers = *numUsers
	opts.NumPosts = *numPosts
	opts.FollowsPerUser = *follows
	opts.NumBlocks = *blocks
	opts.PrivateRatio = *private
	opts.ShouldClean = *shouldClean
	opts.SkipBcrypt = *fast
	opts.DryRun = *dryRun
	opts.RandSeed = *randSeed

	if opts.DryRun {
		if err := seed.Seed(nil, opts); err != nil {
			log.Fatalf("❌ Dry run failed: %v", err)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
