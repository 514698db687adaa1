package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out database handles. Every usecase operation runs its
// writes through WithinTransaction so they commit or roll back together.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
