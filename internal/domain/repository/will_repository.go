package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

// WillRepository reads and writes wills. Reads and deletes are scoped to
// the owner so another user's will is indistinguishable from a missing one.
type WillRepository interface {
	Create(ctx context.Context, w *entity.Will) error
	GetForUser(ctx context.Context, id, userID string) (*entity.Will, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Will, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, w *entity.Will) error
	Delete(ctx context.Context, id, userID string) error
}
