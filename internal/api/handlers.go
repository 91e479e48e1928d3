package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/go-scripts/quotes/internal/crawler"
	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/stream"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Scrape streams the events of one scrape as NDJSON. The browser is released
// when the stream ends or the client goes away. A blank topic is scraped like
// any other and fails in-band when the site has no such page.
func (s *Server) Scrape(c *gin.Context) {
	topic := crawler.NormalizeTopic(c.Query("topic"))

	if !s.sem.TryAcquire(1) {
		s.log.Warn("scrape rejected, server busy", "topic", topic)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many scrapes in progress, retry later"})
		return
	}
	defer s.sem.Release(1)

	scraper, err := crawler.New(s.launcher, s.opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	events := scraper.Scrape(ctx, topic)
	if s.processor != nil {
		events = s.processor.Apply(ctx, topic, events)
	}

	c.Header("Content-Type", stream.ContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	enc := stream.NewEncoder(c.Writer, topic)
	for e := range events {
		if err := enc.Encode(e); err != nil {
			s.log.Warn("client went away", "topic", topic, "err", err)
			return
		}
	}
}

func (s *Server) ListQuotes(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no quote store configured"})
		return
	}

	f := store.Filter{Topic: crawler.NormalizeTopic(c.Query("topic"))}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		f.Limit = limit
	}

	quotes, err := s.store.List(c.Request.Context(), f)
	if err != nil {
		s.log.Error("failed to list quotes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (s *Server) CountQuotes(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no quote store configured"})
		return
	}

	n, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.log.Error("failed to count quotes", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
