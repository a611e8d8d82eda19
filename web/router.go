package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/postbox/api"
	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/feed"
	"github.com/deemkeen/postbox/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	tokenTTL    = 30 * 24 * time.Hour
	maxBodySize = 1 * 1024 * 1024
)

type tokenBody struct {
	Token string `json:"token"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type searchBody struct {
	SearchTerm string `json:"searchTerm"`
}

// Server is the local development backend speaking the client's REST and
// chat protocol.
type Server struct {
	conf    *util.AppConfig
	backend *Backend
	signer  *Signer
	hub     *Hub
	limiter *RateLimiter
	engine  *gin.Engine
}

type Option func(*Server)

// WithRateLimit replaces the default per-IP limit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Server) { s.limiter = NewRateLimiter(r, burst) }
}

func NewServer(conf *util.AppConfig, backend *Backend, opts ...Option) *Server {
	signer := NewSigner(conf.Conf.DevSecret, tokenTTL)
	s := &Server{
		conf:    conf,
		backend: backend,
		signer:  signer,
		hub:     NewHub(signer),
		// 10 requests per second per IP, burst of 20
		limiter: NewRateLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Signer() *Signer {
	return s.signer
}

func (s *Server) routes() *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery(), RequestLogger())
	g.Use(RateLimitMiddleware(s.limiter))

	// the chat socket must not be wrapped by gzip
	g.GET("/chat", s.hub.Handle)

	r := g.Group("/")
	r.Use(gzip.Gzip(gzip.DefaultCompression), MaxBytesMiddleware(maxBodySize))

	r.POST("/login", s.handleLogin)
	r.POST("/checkToken", s.handleCheckToken)
	r.POST("/create-post", s.handleCreatePost)
	r.GET("/post/:id", s.handleGetPost)
	r.POST("/post/:id/edit", s.handleEditPost)
	r.DELETE("/post/:id", s.handleDeletePost)
	r.POST("/profile/:username", s.handleProfile)
	r.GET("/profile/:username/posts", s.handleProfilePosts)
	r.GET("/profile/:username/followers", s.handleFollowers)
	r.GET("/profile/:username/following", s.handleFollowing)
	r.GET("/profile/:username/feed", s.handleFeed)
	r.POST("/addFollow/:username", s.handleFollow)
	r.POST("/getHomeFeed", s.handleHomeFeed)
	r.POST("/search", s.handleSearch)
	return g
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := util.NewLogger("web")
	addr := fmt.Sprintf(":%d", s.conf.Conf.DevPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.limiter.RunCleanup(cleanupCtx, 5*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting dev backend on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down dev backend")
		return srv.Shutdown(shutdownCtx)
	}
}

// session resolves a token to a live account.
func (s *Server) session(token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || !s.backend.Exists(id) {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) requireSession(c *gin.Context, token string) (uuid.UUID, bool) {
	id, ok := s.session(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in to perform that action."})
	}
	return id, ok
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return false
	}
	return true
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginBody
	if !bind(c, &body) {
		return
	}
	id, author, ok := s.backend.Authenticate(body.Username, body.Password)
	if !ok {
		c.JSON(http.StatusOK, false)
		return
	}
	token, err := s.signer.Issue(id, author.Username, author.Avatar)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, domain.User{Token: token, Username: author.Username, Avatar: author.Avatar})
}

func (s *Server) handleCheckToken(c *gin.Context) {
	var body tokenBody
	if !bind(c, &body) {
		return
	}
	_, ok := s.session(body.Token)
	c.JSON(http.StatusOK, ok)
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var body domain.SavePost
	if !bind(c, &body) {
		return
	}
	author, ok := s.requireSession(c, body.Token)
	if !ok {
		return
	}
	id, err := s.backend.CreatePost(author, body.Title, body.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, id)
}

func (s *Server) handleGetPost(c *gin.Context) {
	post := s.backend.GetPost(c.Param("id"), uuid.Nil)
	if post == nil {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleEditPost(c *gin.Context) {
	var body domain.SavePost
	if !bind(c, &body) {
		return
	}
	editor, ok := s.requireSession(c, body.Token)
	if !ok {
		return
	}
	post, err := s.backend.EditPost(c.Param("id"), editor, body.Title, body.Body)
	if err != nil {
		s.postError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) handleDeletePost(c *gin.Context) {
	var body tokenBody
	if !bind(c, &body) {
		return
	}
	requester, ok := s.requireSession(c, body.Token)
	if !ok {
		return
	}
	if err := s.backend.DeletePost(c.Param("id"), requester); err != nil {
		s.postError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeleteSuccess)
}

func (s *Server) postError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoSuchPost):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found."})
	case errors.Is(err, ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform that action."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleProfile(c *gin.Context) {
	var body tokenBody
	if !bind(c, &body) {
		return
	}
	visitor, _ := s.session(body.Token)
	summary := s.backend.Profile(c.Param("username"), visitor)
	if summary == nil {
		c.JSON(http.StatusOK, false)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleProfilePosts(c *gin.Context) {
	posts, err := s.backend.PostsBy(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user."})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) handleFollowers(c *gin.Context) {
	users, err := s.backend.Followers(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user."})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleFollowing(c *gin.Context) {
	users, err := s.backend.Following(c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user."})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleFeed(c *gin.Context) {
	username := c.Param("username")
	format, err := feed.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	posts, err := s.backend.PostsBy(username)
	if err != nil {
		c.Render(http.StatusNotFound, render.String{Format: ""})
		return
	}
	out, err := feed.Render(publicUrl(c), username, posts, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch format {
	case feed.Atom:
		c.Header("Content-Type", "application/atom+xml; charset=utf-8")
	case feed.JSON:
		c.Header("Content-Type", "application/feed+json; charset=utf-8")
	default:
		c.Header("Content-Type", "application/xml; charset=utf-8")
	}
	c.Render(http.StatusOK, render.String{Format: "%s", Data: []any{out}})
}

func (s *Server) handleFollow(c *gin.Context) {
	var body tokenBody
	if !bind(c, &body) {
		return
	}
	follower, ok := s.requireSession(c, body.Token)
	if !ok {
		return
	}
	if err := s.backend.Follow(follower, c.Param("username")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, true)
}

func (s *Server) handleHomeFeed(c *gin.Context) {
	var body tokenBody
	if !bind(c, &body) {
		return
	}
	userId, ok := s.requireSession(c, body.Token)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.backend.HomeFeed(userId))
}

func (s *Server) handleSearch(c *gin.Context) {
	var body searchBody
	if !bind(c, &body) {
		return
	}
	c.JSON(http.StatusOK, s.backend.Search(body.SearchTerm))
}

func publicUrl(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
