// Command main runs the database seeder for the poetry club.
package main

import (
	"flag"
	"log"

	"poetryclub/internal/config"
	"poetryclub/internal/database"
	"poetryclub/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPoems := flag.Int("poems", 200, "Number of poems to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plain seed passwords (dev fast mode)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d poems, clean=%v\n", *numUsers, *numPoems, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumPoems:    *numPoems,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := seed.EnsureAdmin(db); err != nil {
		log.Fatalf("Admin account seeding failed: %v", err)
	}

	users, err := s.SeedCommunity(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	log.Printf("Created %d users", len(users))

	poems, err := s.SeedPoems(users, *numPoems)
	if err != nil {
		log.Fatalf("Poem seeding failed: %v", err)
	}
	log.Printf("Created %d poems", len(poems))

	comments, err := s.SeedEngagement(users, poems)
	if err != nil {
		log.Fatalf("Engagement seeding failed: %v", err)
	}
	log.Printf("Created %d comments", comments)

	log.Println("All done! The database is now populated with demo data.")
	log.Println("All seed users have the password: password123 (admin login: curator)")
}
