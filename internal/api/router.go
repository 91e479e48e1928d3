// Package api serves scrapes over HTTP as NDJSON streams.
package api

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/go-scripts/quotes/internal/crawler"
	"github.com/go-scripts/quotes/internal/pipeline"
	"github.com/go-scripts/quotes/internal/store"
)

// Config wires the server's collaborators. Processor and Store may be nil.
type Config struct {
	Launcher      crawler.Launcher
	Options       crawler.Options
	Processor     *pipeline.Processor
	Store         store.Store
	MaxConcurrent int
	// ImageDir, when set, is served under /images for locally re-hosted images.
	ImageDir string
}

// Server holds the state shared by all requests.
type Server struct {
	launcher  crawler.Launcher
	opts      crawler.Options
	processor *pipeline.Processor
	store     store.Store
	imageDir  string
	// sem bounds the number of browsers running at once.
	sem *semaphore.Weighted
	log *log.Logger
}

func NewServer(cfg Config) *Server {
	n := cfg.MaxConcurrent
	if n < 1 {
		n = 1
	}
	return &Server{
		launcher:  cfg.Launcher,
		opts:      cfg.Options,
		processor: cfg.Processor,
		store:     cfg.Store,
		imageDir:  cfg.ImageDir,
		sem:       semaphore.NewWeighted(int64(n)),
		log:       log.WithPrefix("api"),
	}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(RequestLogger(s.log))
	router.Use(ErrorHandler(s.log))
	router.Use(CORS())

	router.GET("/health", HealthCheck)
	if s.imageDir != "" {
		router.Static("/images", s.imageDir)
	}

	api := router.Group("/api")
	{
		api.GET("/scrape", s.Scrape)
		api.GET("/quotes", s.ListQuotes)
		api.GET("/quotes/count", s.CountQuotes)
	}

	return router
}
