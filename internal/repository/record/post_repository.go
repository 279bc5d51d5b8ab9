package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"blogapi/internal/domain"
	"blogapi/internal/repository"
)

// PostRepository holds the ordered post collection in memory and
// mirrors it to the backend after each mutation. The mutex makes the
// read-modify-rewrite sequence exclusive so concurrent requests cannot
// lose updates.
type PostRepository struct {
	mu      sync.RWMutex
	backend Backend
	posts   []domain.Post
}

func NewPostRepository(backend Backend) *PostRepository {
	return &PostRepository{backend: backend}
}

// Init loads the last snapshot into memory. An absent snapshot starts
// the store empty.
func (r *PostRepository) Init(ctx context.Context) error {
	data, err := r.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = nil
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &r.posts); err != nil {
		return fmt.Errorf("decode posts snapshot: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.posts {
		if r.posts[i].ID == post.ID {
			return fmt.Errorf("post %s: %w", post.ID, domain.ErrConflict)
		}
	}

	r.posts = append(r.posts, *post)
	if err := r.flushLocked(ctx); err != nil {
		r.posts = r.posts[:len(r.posts)-1]
		return err
	}
	return nil
}

func (r *PostRepository) Get(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			post := r.posts[i]
			return &post, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
}

// List returns the full collection in insertion order.
func (r *PostRepository) List(_ context.Context) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Post, len(r.posts))
	copy(out, r.posts)
	return out, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.posts {
		if r.posts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}

	removed := r.posts[idx]
	r.posts = append(r.posts[:idx], r.posts[idx+1:]...)
	if err := r.flushLocked(ctx); err != nil {
		r.posts = append(r.posts[:idx], append([]domain.Post{removed}, r.posts[idx:]...)...)
		return err
	}
	return nil
}

func (r *PostRepository) AddComment(ctx context.Context, postID string, comment domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.posts {
		if r.posts[i].ID != postID {
			continue
		}
		comments := make([]domain.Comment, len(r.posts[i].Comments), len(r.posts[i].Comments)+1)
		copy(comments, r.posts[i].Comments)
		prev := r.posts[i].Comments
		r.posts[i].Comments = append(comments, comment)
		if err := r.flushLocked(ctx); err != nil {
			r.posts[i].Comments = prev
			return err
		}
		return nil
	}
	return fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
}

// flushLocked rewrites the whole snapshot. Callers must hold the write lock.
func (r *PostRepository) flushLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(r.posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode posts snapshot: %w", err)
	}
	if err := r.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
