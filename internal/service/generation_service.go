package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"
	"github.com/blendi-remade/reve-studio/internal/provider"
	"github.com/blendi-remade/reve-studio/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	maxPromptLen = 2000

	// GenericGenerationError is stored when the provider reports a failure without text.
	GenericGenerationError = "Unknown error during generation"
	// StaleGenerationError is stored on comments failed by the sweeper.
	StaleGenerationError = "generation timed out"
)

// Generator submits image edit jobs to the provider.
type Generator interface {
	Submit(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error)
}

// GenerationService owns the comment lifecycle:
// pending -> generating -> completed|failed.
type GenerationService struct {
	commentRepo repository.CommentRepository
	resolver    *SourceResolver
	generator   Generator
	now         func() time.Time
}

type SubmitCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Prompt   string
}

// CallbackInput is one provider webhook delivery. CommentID comes from the
// webhook URL and is zero when absent.
type CallbackInput struct {
	CommentID uint
	Payload   provider.WebhookPayload
}

// CallbackOutcome reports what a callback did.
type CallbackOutcome string

const (
	CallbackApplied    CallbackOutcome = CallbackOutcome(observability.CallbackApplied)
	CallbackDuplicate  CallbackOutcome = CallbackOutcome(observability.CallbackDuplicate)
	// CallbackStoreError means the comment was found but the result could not
	// be written. The delivery is still acknowledged; the sweeper fails the
	// comment if nothing else does.
	CallbackStoreError CallbackOutcome = CallbackOutcome(observability.CallbackStoreError)
)

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewGenerationService(
	commentRepo repository.CommentRepository,
	resolver *SourceResolver,
	generator Generator,
) *GenerationService {
	return &GenerationService{
		commentRepo: commentRepo,
		resolver:    resolver,
		generator:   generator,
		now:         time.Now,
	}
}

// Submit creates a comment and starts its generation. Validation, auth and
// lookup failures return before anything is written. Once the pending row
// exists, a provider failure turns it into a failed comment instead of an
// error, so the prompt is never lost.
func (s *GenerationService) Submit(ctx context.Context, in SubmitCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, models.NewValidationError("Prompt is required")
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		return nil, models.NewValidationError("Prompt too long (max 2000 characters)")
	}

	span, ctx := observability.NewSpan(ctx, "generation.submit",
		attribute.Int("post_id", int(in.PostID)),
	)
	defer span.End()

	source, err := s.resolver.Resolve(ctx, in.PostID, in.ParentID, in.UserID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Prompt:   prompt,
		Status:   models.StatusPending,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	observability.RecordTransition(string(models.StatusPending), "submit")
	span.AddAttributes(attribute.Int("comment_id", int(comment.ID)))

	// The provider call and the follow-up write outlive a disconnecting client.
	ctx = observability.WithCommentCorrelation(context.WithoutCancel(ctx), comment.ID)

	result, err := s.generator.Submit(ctx, provider.SubmitRequest{
		Prompt:        prompt,
		ImageURL:      source,
		CorrelationID: strconv.FormatUint(uint64(comment.ID), 10),
	})
	if err != nil {
		span.SetError(err)
		observability.LogAsyncOperationError(ctx, "generation.submit", err, map[string]interface{}{"comment_id": comment.ID})
		return s.failSubmission(ctx, comment, err)
	}

	advanced, err := s.commentRepo.MarkGenerating(ctx, comment.ID, result.RequestID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !advanced {
		// the callback got there first; report whatever it left behind
		return s.commentRepo.GetByID(ctx, comment.ID)
	}
	observability.RecordTransition(string(models.StatusGenerating), "submit")

	requestID := result.RequestID
	comment.Status = models.StatusGenerating
	comment.FalRequestID = &requestID
	return comment, nil
}

func (s *GenerationService) failSubmission(ctx context.Context, comment *models.Comment, cause error) (*models.Comment, error) {
	reason := models.NewUpstreamError(cause).Error()
	if _, err := s.commentRepo.MarkFailed(ctx, comment.ID, reason); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.RecordTransition(string(models.StatusFailed), "submit")
	comment.Status = models.StatusFailed
	comment.Error = &reason
	return comment, nil
}

// OnCallback applies a provider result. The comment is looked up by job id,
// falling back to the comment id carried on the webhook URL when the
// callback beat MarkGenerating. A delivery for an already terminal comment
// is a no-op reported as CallbackDuplicate. Once the comment is found the
// delivery is always acknowledged: a failed write is logged and reported as
// CallbackStoreError rather than returned.
func (s *GenerationService) OnCallback(ctx context.Context, in CallbackInput) (CallbackOutcome, error) {
	requestID := in.Payload.RequestID
	span, ctx := observability.NewSpan(ctx, "generation.callback",
		attribute.String("fal.request_id", requestID),
	)
	defer span.End()

	comment, err := s.findForCallback(ctx, requestID, in.CommentID)
	if err != nil {
		span.SetError(err)
		if models.HasCode(err, models.CodeNotFound) {
			observability.CallbackOutcomes.WithLabelValues(observability.CallbackUnknown).Inc()
			observability.GlobalLogger.WarnContext(ctx, "callback for unknown generation dropped",
				"request_id", requestID, "comment_id", in.CommentID)
		}
		return "", err
	}

	ctx = observability.WithCommentCorrelation(ctx, comment.ID)
	observability.LogAsyncOperationStart(ctx, "generation.callback", map[string]interface{}{
		"comment_id": comment.ID,
		"status":     in.Payload.Status,
	})

	var (
		applied bool
		target  models.GenerationStatus
	)
	if url, ok := in.Payload.ImageURL(); ok {
		target = models.StatusCompleted
		applied, err = s.commentRepo.MarkCompleted(ctx, comment.ID, url)
	} else {
		reason := strings.TrimSpace(in.Payload.Error)
		if reason == "" {
			reason = GenericGenerationError
		}
		target = models.StatusFailed
		applied, err = s.commentRepo.MarkFailed(ctx, comment.ID, reason)
	}
	if err != nil {
		span.SetError(err)
		observability.CallbackOutcomes.WithLabelValues(observability.CallbackStoreError).Inc()
		observability.LogAsyncOperationError(ctx, "generation.callback", err, map[string]interface{}{
			"comment_id": comment.ID,
			"status":     target,
		})
		return CallbackStoreError, nil
	}

	if !applied {
		observability.CallbackOutcomes.WithLabelValues(observability.CallbackDuplicate).Inc()
		observability.LogAsyncOperationEnd(ctx, "generation.callback", map[string]interface{}{
			"comment_id": comment.ID,
			"outcome":    CallbackDuplicate,
		})
		return CallbackDuplicate, nil
	}

	observability.RecordTransition(string(target), "callback")
	observability.CallbackOutcomes.WithLabelValues(observability.CallbackApplied).Inc()
	observability.LogAsyncOperationEnd(ctx, "generation.callback", map[string]interface{}{
		"comment_id": comment.ID,
		"outcome":    CallbackApplied,
		"status":     target,
	})
	return CallbackApplied, nil
}

func (s *GenerationService) findForCallback(ctx context.Context, requestID string, commentID uint) (*models.Comment, error) {
	if requestID != "" {
		comment, err := s.commentRepo.GetByFalRequestID(ctx, requestID)
		if err == nil {
			return comment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewInternalError(err)
		}
	}
	if commentID == 0 {
		return nil, models.NewNotFoundError("Generation", requestID)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", commentID)
	}
	// a job id already stored for this comment must match the delivery
	if comment.FalRequestID != nil && *comment.FalRequestID != requestID {
		return nil, models.NewNotFoundError("Generation", requestID)
	}
	return comment, nil
}

// DeleteComment removes a comment, its descendants and their likes. Only the
// comment's author may delete it.
func (s *GenerationService) DeleteComment(ctx context.Context, in DeleteCommentInput) (int64, error) {
	if in.UserID == 0 {
		return 0, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return 0, notFoundOr(err, "Comment", in.CommentID)
	}
	if comment.UserID != in.UserID {
		return 0, models.NewUnauthorizedError("You can only delete your own comments")
	}

	removed, err := s.commentRepo.DeleteTree(ctx, in.CommentID)
	if err != nil {
		return 0, notFoundOr(err, "Comment", in.CommentID)
	}
	return removed, nil
}

// SweepStale fails comments that have been in flight longer than olderThan.
// It uses the same guarded transition as callbacks, so a real callback that
// arrives afterwards is ignored as a duplicate.
func (s *GenerationService) SweepStale(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}
	cutoff := s.now().Add(-olderThan)
	observability.LogAsyncOperationStart(ctx, "generation.sweep", map[string]interface{}{"cutoff": cutoff})

	swept := 0
	for {
		stale, err := s.commentRepo.ListStale(ctx, cutoff, batch)
		if err != nil {
			observability.LogAsyncOperationError(ctx, "generation.sweep", err, nil)
			return swept, err
		}
		for _, c := range stale {
			applied, err := s.commentRepo.MarkFailed(ctx, c.ID, StaleGenerationError)
			if err != nil {
				observability.LogAsyncOperationError(ctx, "generation.sweep", err, map[string]interface{}{"comment_id": c.ID})
				return swept, err
			}
			if applied {
				swept++
				observability.SweptGenerations.Inc()
				observability.RecordTransition(string(models.StatusFailed), "sweep")
			}
		}
		if len(stale) < batch {
			break
		}
	}

	observability.LogAsyncOperationEnd(ctx, "generation.sweep", map[string]interface{}{"swept": swept})
	return swept, nil
}
