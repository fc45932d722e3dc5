// Command watch follows a post's comment thread until every generation has
// settled, the same way the web client polls.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/polling"

	"github.com/gofiber/fiber/v2"
)

type listing struct {
	Flattened      []*models.Comment `json:"flattened"`
	PollIntervalMS int64             `json:"poll_interval_ms"`
}

func main() {
	host := flag.String("host", "http://localhost:8375", "API base URL")
	postID := flag.Uint("post", 0, "Post to watch")
	prompt := flag.String("prompt", "", "Submit this prompt before watching (needs -token)")
	parentID := flag.Uint("parent", 0, "Parent comment for -prompt")
	token := flag.String("token", os.Getenv("REVE_TOKEN"), "Bearer token")
	interval := flag.Duration("interval", polling.DefaultInterval, "Poll interval")
	flag.Parse()

	if *postID == 0 {
		log.Fatal("-post is required")
	}
	base := strings.TrimRight(*host, "/")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *prompt != "" {
		c, err := submit(base, *token, *postID, *prompt, *parentID)
		if err != nil {
			log.Fatalf("Submit failed: %v", err)
		}
		log.Printf("Comment %d submitted, status=%s", c.ID, c.Status)
	}

	p := &polling.Poller{
		Interval: *interval,
		OnUpdate: func(comments []*models.Comment) {
			log.Printf("%d comments, %d in flight", len(comments), polling.InFlight(comments))
		},
		OnError: func(err error) {
			log.Printf("Fetch failed: %v", err)
		},
	}
	comments, err := p.Run(ctx, func(context.Context) ([]*models.Comment, error) {
		return fetch(base, *postID)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

	for _, c := range comments {
		switch c.Status {
		case models.StatusCompleted:
			fmt.Printf("#%d %-10s %s\n", c.ID, c.Status, c.ImageURL)
		case models.StatusFailed:
			reason := ""
			if c.Error != nil {
				reason = *c.Error
			}
			fmt.Printf("#%d %-10s %s\n", c.ID, c.Status, reason)
		default:
			fmt.Printf("#%d %-10s\n", c.ID, c.Status)
		}
	}
}

func fetch(base string, postID uint) ([]*models.Comment, error) {
	agent := fiber.Get(fmt.Sprintf("%s/api/posts/%d/comments", base, postID)).Timeout(10 * time.Second)
	if err := agent.Parse(); err != nil {
		return nil, err
	}
	var out listing
	code, body, errs := agent.Struct(&out)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("listing returned %d: %s", code, body)
	}
	return out.Flattened, nil
}

func submit(base, token string, postID uint, prompt string, parentID uint) (*models.Comment, error) {
	body := map[string]any{"prompt": prompt}
	if parentID > 0 {
		body["parent_id"] = parentID
	}
	agent := fiber.Post(fmt.Sprintf("%s/api/posts/%d/comments", base, postID)).
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		JSON(body).
		Timeout(30 * time.Second)
	if err := agent.Parse(); err != nil {
		return nil, err
	}
	code, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if code != fiber.StatusCreated {
		return nil, fmt.Errorf("create returned %d: %s", code, raw)
	}
	var c models.Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
