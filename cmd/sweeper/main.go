// Command sweeper fails comments whose generation never called back.
// It is meant to run from cron.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/blendi-remade/reve-studio/internal/bootstrap"
	"github.com/blendi-remade/reve-studio/internal/config"
	"github.com/blendi-remade/reve-studio/internal/featureflags"
	"github.com/blendi-remade/reve-studio/internal/repository"
	"github.com/blendi-remade/reve-studio/internal/service"
)

// The sweeper never submits jobs.
type noGenerator struct{ service.Generator }

func main() {
	olderThan := flag.Duration("older-than", 0, "Override GENERATION_STALE_AFTER_MINUTES")
	batch := flag.Int("batch", 200, "Comments to fail per batch")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	comments := repository.NewCommentRepository(db)
	resolver := service.NewSourceResolver(repository.NewPostRepository(db), comments, featureflags.Parse(cfg.FeatureFlags))
	svc := service.NewGenerationService(comments, resolver, noGenerator{})

	staleAfter := cfg.GenerationStaleAfter()
	if *olderThan > 0 {
		staleAfter = *olderThan
	}

	n, err := svc.SweepStale(ctx, staleAfter, *batch)
	if err != nil {
		log.Fatalf("Sweep failed after %d comments: %v", n, err)
	}
	log.Printf("Failed %d comments in flight for more than %s", n, staleAfter)
}
