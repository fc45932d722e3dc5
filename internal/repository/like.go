package repository

import (
	"context"
	"fmt"

	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores the like ledger for posts and comments. Add and
// Remove keep the subject's denormalized likes_count in step with the rows.
type LikeRepository interface {
	Exists(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error)
	Add(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error)
	Remove(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error)
	Count(ctx context.Context, subject models.LikeSubject, subjectID uint) (int, error)
	LikedIDs(ctx context.Context, subject models.LikeSubject, userID uint, subjectIDs []uint) ([]uint, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

// likeTable describes where a subject's likes and counter live.
type likeTable struct {
	row    func(subjectID, userID uint) any
	model  any
	column string
	owner  any
}

func tableFor(subject models.LikeSubject) (likeTable, error) {
	switch subject {
	case models.LikeSubjectPost:
		return likeTable{
			row: func(subjectID, userID uint) any {
				return &models.PostLike{PostID: subjectID, UserID: userID}
			},
			model:  &models.PostLike{},
			column: "post_id",
			owner:  &models.Post{},
		}, nil
	case models.LikeSubjectComment:
		return likeTable{
			row: func(subjectID, userID uint) any {
				return &models.CommentLike{CommentID: subjectID, UserID: userID}
			},
			model:  &models.CommentLike{},
			column: "comment_id",
			owner:  &models.Comment{},
		}, nil
	default:
		return likeTable{}, fmt.Errorf("unknown like subject %q", subject)
	}
}

func (r *likeRepository) Exists(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error) {
	t, err := tableFor(subject)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(t.model).
		Where(t.column+" = ? AND user_id = ?", subjectID, userID).
		Count(&count).Error
	return count > 0, err
}

// Add inserts the like row and bumps the counter. It reports false when the
// row already existed (a concurrent toggle won the insert).
func (r *likeRepository) Add(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error) {
	t, err := tableFor(subject)
	if err != nil {
		return false, err
	}

	inserted := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(t.row(subjectID, userID))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true
		return tx.Model(t.owner).Where("id = ?", subjectID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "add_"+string(subject)+"_like")
		return false, err
	}
	if inserted {
		r.log.LogCreate(ctx, map[string]interface{}{"subject": subject, "subject_id": subjectID, "user_id": userID})
	}
	return inserted, nil
}

// Remove deletes the like row and decrements the counter, never below zero.
func (r *likeRepository) Remove(ctx context.Context, subject models.LikeSubject, subjectID, userID uint) (bool, error) {
	t, err := tableFor(subject)
	if err != nil {
		return false, err
	}

	removed := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(t.column+" = ? AND user_id = ?", subjectID, userID).Delete(t.model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(t.owner).Where("id = ?", subjectID).
			UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "remove_"+string(subject)+"_like")
		return false, err
	}
	if removed {
		r.log.LogDelete(ctx, map[string]interface{}{"subject": subject, "subject_id": subjectID, "user_id": userID})
	}
	return removed, nil
}

// Count reads the subject's denormalized likes_count.
func (r *likeRepository) Count(ctx context.Context, subject models.LikeSubject, subjectID uint) (int, error) {
	t, err := tableFor(subject)
	if err != nil {
		return 0, err
	}
	var counts []int
	if err := r.db.WithContext(ctx).Model(t.owner).
		Where("id = ?", subjectID).
		Pluck("likes_count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

// LikedIDs returns the subset of subjectIDs the user has liked.
func (r *likeRepository) LikedIDs(ctx context.Context, subject models.LikeSubject, userID uint, subjectIDs []uint) ([]uint, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	t, err := tableFor(subject)
	if err != nil {
		return nil, err
	}
	var liked []uint
	err = r.db.WithContext(ctx).Model(t.model).
		Where("user_id = ? AND "+t.column+" IN ?", userID, subjectIDs).
		Pluck(t.column, &liked).Error
	return liked, err
}
