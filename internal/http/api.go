package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"blogapi/internal/domain"
	"blogapi/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth    service.AuthService
	posts   service.PostService
	limiter *RateLimiter
}

func NewHandler(auth service.AuthService, posts service.PostService, limiter *RateLimiter) *Handler {
	return &Handler{
		auth:    auth,
		posts:   posts,
		limiter: limiter,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	// register and login are the brute-forceable endpoints, so the
	// limiter covers the whole group, not just protected routes
	if h.limiter != nil {
		api.Use(h.limiter.Middleware())
	}
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	protected := api.Group("")
	protected.Use(h.authMiddleware())
	{
		protected.GET("/user", h.currentUser)
		protected.GET("/v1/posts", h.listPosts)
		protected.POST("/v1/posts", h.createPost)
		protected.DELETE("/v1/posts/:id", h.deletePost)
		protected.GET("/v1/posts/search", h.searchPosts)
		protected.GET("/v1/posts/sort", h.sortPosts)
		protected.POST("/v1/posts/:id/comments", h.addComment)
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Author  string `json:"author"`
}

type addCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.auth.IssueToken(user.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "username": user.Username})
}

func (h *Handler) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": principal(c)})
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	author := principal(c)
	if req.Author != "" && req.Author != author {
		c.JSON(http.StatusForbidden, gin.H{"error": "author must match the authenticated user"})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), req.Title, req.Content, author)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
		return
	}
	pageSize, err := queryInt(c, "page_size", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be an integer"})
		return
	}

	result, err := h.posts.ListPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": postsToResponse(result.Posts),
		"total":   result.Total,
	})
}

func (h *Handler) deletePost(c *gin.Context) {
	id := c.Param("id")

	if err := h.posts.DeletePost(c.Request.Context(), id, principal(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) searchPosts(c *gin.Context) {
	results, err := h.posts.SearchPosts(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": postsToResponse(results)})
}

func (h *Handler) sortPosts(c *gin.Context) {
	sortBy := c.DefaultQuery("sort_by", service.SortByDate)
	direction := c.DefaultQuery("direction", service.DirectionAsc)

	results, err := h.posts.SortPosts(c.Request.Context(), sortBy, direction)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": postsToResponse(results)})
}

func (h *Handler) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

type PostResponse struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Author     string            `json:"author"`
	Date       string            `json:"date"`
	Comments   []domain.Comment  `json:"comments"`
	Categories []domain.Category `json:"categories"`
	Tags       []domain.Tag      `json:"tags"`
}

func postToResponse(post domain.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Author:     post.Author,
		Date:       post.Date.Format(time.RFC3339),
		Comments:   post.Comments,
		Categories: post.Categories,
		Tags:       post.Tags,
	}
	if resp.Comments == nil {
		resp.Comments = []domain.Comment{}
	}
	if resp.Categories == nil {
		resp.Categories = []domain.Category{}
	}
	if resp.Tags == nil {
		resp.Tags = []domain.Tag{}
	}
	return resp
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}
