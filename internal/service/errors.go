// Package service holds the business rules of the remix tree: source image
// resolution, the generation state machine, and the like ledger.
package service

import (
	"errors"

	"github.com/blendi-remade/reve-studio/internal/models"

	"gorm.io/gorm"
)

// notFoundOr translates a missing row into a NOT_FOUND AppError and leaves
// every other error untouched.
func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
