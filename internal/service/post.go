package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/domain"
	"blogapi/internal/repository"
)

// Sortable fields and directions accepted by SortPosts.
const (
	SortByTitle  = "title"
	SortByAuthor = "author"
	SortByDate   = "date"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Page is one page of the post collection plus the total count.
type Page struct {
	Posts []domain.Post
	Total int
}

// PostService coordinates post level operations backed by the record store.
type PostService interface {
	CreatePost(ctx context.Context, title, content, author string) (*domain.Post, error)
	ListPosts(ctx context.Context, page, pageSize int) (*Page, error)
	SearchPosts(ctx context.Context, query string) ([]domain.Post, error)
	SortPosts(ctx context.Context, sortBy, direction string) ([]domain.Post, error)
	DeletePost(ctx context.Context, id, requester string) error
	AddComment(ctx context.Context, postID, content string) (*domain.Comment, error)
}

type postService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func (s *postService) CreatePost(ctx context.Context, title, content, author string) (*domain.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("author is required: %w", domain.ErrValidation)
	}

	post := &domain.Post{
		ID:         newRecordID(),
		Title:      title,
		Content:    content,
		Author:     author,
		Date:       time.Now().UTC(),
		Comments:   []domain.Comment{},
		Categories: []domain.Category{},
		Tags:       []domain.Tag{},
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("page and page_size must be positive: %w", domain.ErrValidation)
	}

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	total := len(posts)

	// pages past the end are empty; checking against total/pageSize
	// before multiplying keeps start from overflowing on huge pages
	if page-1 > total/pageSize {
		return &Page{Posts: []domain.Post{}, Total: total}, nil
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return &Page{Posts: posts[start:end], Total: total}, nil
}

// SearchPosts matches query as a case-insensitive substring of title or
// content. An empty or whitespace query matches nothing.
func (s *postService) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.Post{}, nil
	}

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Post, 0)
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Title), query) ||
			strings.Contains(strings.ToLower(post.Content), query) {
			results = append(results, post)
		}
	}
	return results, nil
}

// SortPosts returns the whole collection ordered by the given field.
// The sort is stable, so ties keep insertion order.
func (s *postService) SortPosts(ctx context.Context, sortBy, direction string) ([]domain.Post, error) {
	var less func(a, b domain.Post) bool
	switch sortBy {
	case SortByTitle:
		less = func(a, b domain.Post) bool { return a.Title < b.Title }
	case SortByAuthor:
		less = func(a, b domain.Post) bool { return a.Author < b.Author }
	case SortByDate:
		less = func(a, b domain.Post) bool { return a.Date.Before(b.Date) }
	default:
		return nil, fmt.Errorf("invalid sort_by %q: %w", sortBy, domain.ErrValidation)
	}

	switch direction {
	case DirectionAsc:
	case DirectionDesc:
		asc := less
		less = func(a, b domain.Post) bool { return asc(b, a) }
	default:
		return nil, fmt.Errorf("invalid direction %q: %w", direction, domain.ErrValidation)
	}

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
	return posts, nil
}

// DeletePost removes a post. Only the post's author may delete it.
func (s *postService) DeletePost(ctx context.Context, id, requester string) error {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Author != requester {
		return fmt.Errorf("post %s belongs to %s: %w", id, post.Author, domain.ErrForbidden)
	}
	return s.posts.Delete(ctx, id)
}

func (s *postService) AddComment(ctx context.Context, postID, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content is required: %w", domain.ErrValidation)
	}

	comment := domain.Comment{
		ID:      newRecordID(),
		PostID:  postID,
		Content: content,
	}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// newRecordID matches the hex form the store has always used for ids.
func newRecordID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
