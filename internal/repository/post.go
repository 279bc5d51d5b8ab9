package repository

import (
	"context"

	"blogapi/internal/domain"
)

// PostRepository exposes persistence operations for Post records.
// Implementations keep the full collection in memory and mirror it to
// a snapshot backend after each mutation.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, postID string, comment domain.Comment) error
}
