package repository

import (
	"context"

	"github.com/kenfuse/kenfuse-api/internal/domain/entity"
)

// MemorialFilter narrows the public memorial listing.
type MemorialFilter struct {
	Query string
	Page  Page
}

type MemorialRepository interface {
	Create(ctx context.Context, m *entity.Memorial) error
	GetByID(ctx context.Context, id string) (*entity.Memorial, error)
	GetForUser(ctx context.Context, id, userID string) (*entity.Memorial, error)
	ListPublic(ctx context.Context, f MemorialFilter) ([]entity.Memorial, int, error)
	ListByIDs(ctx context.Context, ids []string) ([]entity.Memorial, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Memorial, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, m *entity.Memorial) error
	Delete(ctx context.Context, id, userID string) error

	CreateTribute(ctx context.Context, t *entity.Tribute) error
	ListTributes(ctx context.Context, memorialID string) ([]entity.Tribute, error)

	AddMedia(ctx context.Context, m *entity.MemorialMedia) error
	ListMedia(ctx context.Context, memorialID string, kind entity.MediaKind) ([]entity.MemorialMedia, error)
	GetMedia(ctx context.Context, memorialID string, kind entity.MediaKind, id string) (*entity.MemorialMedia, error)
	DeleteMedia(ctx context.Context, memorialID string, kind entity.MediaKind, id string) error
}
