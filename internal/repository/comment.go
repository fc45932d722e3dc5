package repository

import (
	"context"
	"time"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations. The Mark*
// methods are guarded updates: they only move a comment forward through
// pending -> generating -> completed|failed and report whether a row changed.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByFalRequestID(ctx context.Context, requestID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	MarkGenerating(ctx context.Context, id uint, requestID string) (bool, error)
	MarkCompleted(ctx context.Context, id uint, imageURL string) (bool, error)
	MarkFailed(ctx context.Context, id uint, reason string) (bool, error)
	DeleteTree(ctx context.Context, id uint) (int64, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Comment, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

var inFlightStatuses = []models.GenerationStatus{models.StatusPending, models.StatusGenerating}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
		"status":     comment.Status,
	})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByFalRequestID(ctx context.Context, requestID string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("fal_request_id = ?", requestID).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns every comment of a post oldest first, so tree siblings
// come out in chronological order.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// MarkGenerating records the provider job id and advances pending -> generating.
// If a callback already finished the comment, only the job id is attached.
func (r *commentRepository) MarkGenerating(ctx context.Context, id uint, requestID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":         models.StatusGenerating,
			"fal_request_id": requestID,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "mark_generating")
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.LogUpdate(ctx, map[string]interface{}{"comment_id": id, "status": models.StatusGenerating})
		return true, nil
	}

	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND fal_request_id IS NULL", id).
		Update("fal_request_id", requestID).Error
	return false, err
}

func (r *commentRepository) MarkCompleted(ctx context.Context, id uint, imageURL string) (bool, error) {
	return r.finish(ctx, id, map[string]interface{}{
		"status":    models.StatusCompleted,
		"image_url": imageURL,
		"error":     nil,
	})
}

func (r *commentRepository) MarkFailed(ctx context.Context, id uint, reason string) (bool, error) {
	return r.finish(ctx, id, map[string]interface{}{
		"status": models.StatusFailed,
		"error":  reason,
	})
}

// finish applies a terminal transition only while the comment is still in flight.
func (r *commentRepository) finish(ctx context.Context, id uint, values map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND status IN ?", id, inFlightStatuses).
		Updates(values)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "finish")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"comment_id": id, "status": values["status"]})
	return true, nil
}

const descendantsSQL = `
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM comments WHERE id = ?
	UNION ALL
	SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
)
SELECT id FROM subtree`

// DeleteTree removes the comment, all of its descendants, and their likes in
// one transaction. It returns the number of comments removed.
func (r *commentRepository) DeleteTree(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Raw(descendantsSQL, id).Scan(&ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete_tree")
		return 0, err
	}
	r.log.LogDelete(ctx, map[string]interface{}{"comment_id": id, "removed": removed})
	return removed, nil
}

// ListStale returns in-flight comments created before cutoff, oldest first.
func (r *commentRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", inFlightStatuses, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}
