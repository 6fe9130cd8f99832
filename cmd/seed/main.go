// Command main runs the database seeder for Stanhub.
package main

import (
	"flag"
	"log"

	"stanhub/internal/bootstrap"
	"stanhub/internal/config"
	"stanhub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions.Users, "Number of users to create")
	numPosts := flag.Int("posts", seed.DefaultOptions.Posts, "Number of forum posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		Users: *numUsers,
		Posts: *numPosts,
		Clean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All seeded users have the password: password123")
}
