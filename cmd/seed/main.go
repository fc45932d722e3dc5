// Command seed fills a development database with demo posts and remix trees.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/blendi-remade/reve-studio/internal/bootstrap"
	"github.com/blendi-remade/reve-studio/internal/config"
	"github.com/blendi-remade/reve-studio/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	presetPath := flag.String("preset", "default", "YAML preset file, or \"default\" for the built-in one")
	users := flag.Int("users", defaults.Users, "Number of distinct user ids to spread content over")
	posts := flag.Int("posts", defaults.Posts, "Generated posts on top of the preset")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	failureRate := flag.Float64("failure-rate", defaults.FailureRate, "Share of comments seeded as failed")
	randSeed := flag.Int64("seed", defaults.RandSeed, "Random seed")
	clean := flag.Bool("clean", true, "Clear existing rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	preset, err := seed.LoadPreset(*presetPath)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}

	s := seed.NewSeeder(db, *randSeed)
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	opts := defaults
	opts.Users = *users
	opts.Posts = *posts
	opts.CommentsPerPost = *comments
	opts.FailureRate = *failureRate
	opts.RandSeed = *randSeed

	if _, err := s.Run(ctx, preset, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
