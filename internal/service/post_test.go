package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/domain"
	"blogapi/internal/repository/record"
)

func newTestPostService(t *testing.T) PostService {
	t.Helper()

	repo := record.NewPostRepository(record.NewMemoryBackend())
	require.NoError(t, repo.Init(context.Background()))
	return NewPostService(repo)
}

func seedPosts(t *testing.T, svc PostService, posts ...[3]string) []domain.Post {
	t.Helper()

	created := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		post, err := svc.CreatePost(context.Background(), p[0], p[1], p[2])
		require.NoError(t, err)
		created = append(created, *post)
	}
	return created
}

func TestCreatePost(t *testing.T) {
	svc := newTestPostService(t)

	post, err := svc.CreatePost(context.Background(), "Hello World", "first post", "alice")
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "alice", post.Author)
	assert.False(t, post.Date.IsZero())
}

func TestCreatePostValidation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "", "content", "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreatePost(ctx, "title", "  ", "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreatePost(ctx, "title", "content", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreatePostUniqueIDs(t *testing.T) {
	svc := newTestPostService(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		post, err := svc.CreatePost(context.Background(), "t", "c", "alice")
		require.NoError(t, err)
		require.False(t, seen[post.ID], "duplicate id %s", post.ID)
		seen[post.ID] = true
	}
}

func TestListPostsPagination(t *testing.T) {
	svc := newTestPostService(t)
	created := seedPosts(t, svc,
		[3]string{"one", "c1", "alice"},
		[3]string{"two", "c2", "alice"},
		[3]string{"three", "c3", "bob"},
		[3]string{"four", "c4", "bob"},
		[3]string{"five", "c5", "alice"},
	)

	// pages in order reconstruct the full store
	var union []string
	for page := 1; ; page++ {
		result, err := svc.ListPosts(context.Background(), page, 2)
		require.NoError(t, err)
		assert.Equal(t, len(created), result.Total)
		assert.LessOrEqual(t, len(result.Posts), 2)
		if len(result.Posts) == 0 {
			break
		}
		for _, p := range result.Posts {
			union = append(union, p.ID)
		}
	}

	require.Len(t, union, len(created))
	for i, p := range created {
		assert.Equal(t, p.ID, union[i], "insertion order must be preserved")
	}
}

func TestListPostsValidation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	_, err := svc.ListPosts(ctx, 0, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ListPosts(ctx, 1, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListPostsHugePage(t *testing.T) {
	svc := newTestPostService(t)
	seedPosts(t, svc, [3]string{"one", "c1", "alice"})
	ctx := context.Background()

	// page numbers large enough to overflow (page-1)*pageSize must
	// yield an empty page, not a panic
	result, err := svc.ListPosts(ctx, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, 1, result.Total)

	result, err = svc.ListPosts(ctx, 2, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, 1, result.Total)

	result, err = svc.ListPosts(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, result.Posts, 1)
}

func TestListPostsPastEnd(t *testing.T) {
	svc := newTestPostService(t)
	seedPosts(t, svc, [3]string{"one", "c1", "alice"})

	result, err := svc.ListPosts(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Posts)
	assert.Equal(t, 1, result.Total)
}

func TestSearchPosts(t *testing.T) {
	svc := newTestPostService(t)
	seedPosts(t, svc,
		[3]string{"Hello World", "greetings", "alice"},
		[3]string{"weather", "it is sunny out there", "bob"},
		[3]string{"farewell", "goodbye world", "alice"},
	)
	ctx := context.Background()

	results, err := svc.SearchPosts(ctx, "hello")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hello World", results[0].Title)

	// matches content too
	results, err = svc.SearchPosts(ctx, "WORLD")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.SearchPosts(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchPostsEmptyQuery(t *testing.T) {
	svc := newTestPostService(t)
	seedPosts(t, svc, [3]string{"Hello World", "greetings", "alice"})

	for _, query := range []string{"", "   "} {
		results, err := svc.SearchPosts(context.Background(), query)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestSortPosts(t *testing.T) {
	svc := newTestPostService(t)
	seedPosts(t, svc,
		[3]string{"banana", "c1", "carol"},
		[3]string{"apple", "c2", "alice"},
		[3]string{"cherry", "c3", "bob"},
	)
	ctx := context.Background()

	byTitle, err := svc.SortPosts(ctx, SortByTitle, DirectionAsc)
	require.NoError(t, err)
	assert.Equal(t, "apple", byTitle[0].Title)
	assert.Equal(t, "cherry", byTitle[2].Title)

	byAuthor, err := svc.SortPosts(ctx, SortByAuthor, DirectionDesc)
	require.NoError(t, err)
	assert.Equal(t, "carol", byAuthor[0].Author)
	assert.Equal(t, "alice", byAuthor[2].Author)
}

func TestSortPostsByDateDescStable(t *testing.T) {
	svc := newTestPostService(t)
	created := seedPosts(t, svc,
		[3]string{"first", "c1", "alice"},
		[3]string{"second", "c2", "alice"},
		[3]string{"third", "c3", "alice"},
	)

	sorted, err := svc.SortPosts(context.Background(), SortByDate, DirectionDesc)
	require.NoError(t, err)
	require.Len(t, sorted, len(created))

	for i := 1; i < len(sorted); i++ {
		assert.False(t, sorted[i-1].Date.Before(sorted[i].Date),
			"dates must be non-increasing")
	}
	// equal timestamps keep insertion order
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Date.Equal(sorted[i].Date) {
			prev := indexOf(created, sorted[i-1].ID)
			cur := indexOf(created, sorted[i].ID)
			assert.Less(t, prev, cur)
		}
	}
}

func indexOf(posts []domain.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func TestSortPostsValidation(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	_, err := svc.SortPosts(ctx, "content", DirectionAsc)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SortPosts(ctx, SortByTitle, "sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeletePost(t *testing.T) {
	svc := newTestPostService(t)
	created := seedPosts(t, svc, [3]string{"mine", "c1", "alice"})
	ctx := context.Background()

	err := svc.DeletePost(ctx, created[0].ID, "bob")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.DeletePost(ctx, created[0].ID, "alice"))

	result, err := svc.ListPosts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Posts)

	err = svc.DeletePost(ctx, created[0].ID, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	svc := newTestPostService(t)
	created := seedPosts(t, svc, [3]string{"post", "c1", "alice"})
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, created[0].ID, "nice one")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, created[0].ID, comment.PostID)

	_, err = svc.AddComment(ctx, created[0].ID, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddComment(ctx, "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
