package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/internal/scraper/linkedin"
	"go-linkedin-extractor/pkg/logging"
)

// Store is the read side of the record store.
type Store interface {
	GetJobs(ctx context.Context) ([]scraper.JobRecord, error)
	GetDetails(ctx context.Context) (map[string]scraper.JobDetailRecord, error)
}

// Server is the HTTP face of the page context: request/response messages,
// pushed events and read access to stored records.
type Server struct {
	router  *messaging.Router
	store   Store
	pageURL func() string
	hub     *Hub
	log     *logging.Logger

	engine *gin.Engine
	http   *http.Server
}

func New(router *messaging.Router, store Store, pageURL func() string, hub *Hub, log *logging.Logger) *Server {
	s := &Server{
		router:  router,
		store:   store,
		pageURL: pageURL,
		hub:     hub,
		log:     log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/", s.health)
	r.GET("/ws", func(c *gin.Context) { s.hub.Handle(c.Writer, c.Request) })

	api := r.Group("/api")
	api.POST("/message", s.message)
	api.GET("/jobs", s.jobs)
	api.GET("/details", s.details)
	api.GET("/page", s.page)

	s.engine = r
	s.http = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe blocks until the server stops. http.ErrServerClosed after
// Shutdown is not an error.
func (s *Server) ListenAndServe(addr string) error {
	s.http.Addr = addr
	s.log.Info("🌍 server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LinkedIn job extractor is running!",
		"status":  "healthy",
	})
}

func (s *Server) message(c *gin.Context) {
	var req messaging.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid message: " + err.Error()})
		return
	}

	res, err := s.router.Handle(c.Request.Context(), req)
	switch {
	case errors.Is(err, messaging.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	case err != nil:
		s.log.Error("❌ message failed", "action", req.Action, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) jobs(c *gin.Context) {
	jobs, err := s.store.GetJobs(c.Request.Context())
	if err != nil {
		s.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) details(c *gin.Context) {
	details, err := s.store.GetDetails(c.Request.Context())
	if err != nil {
		s.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) page(c *gin.Context) {
	url := s.pageURL()
	c.JSON(http.StatusOK, messaging.PageInfo{URL: url, IsJobsPage: linkedin.IsJobsPage(url)})
}

func (s *Server) storageError(c *gin.Context, err error) {
	s.log.Error("❌ storage read failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage unavailable"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
