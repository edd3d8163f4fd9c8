// Package server exposes the pipeline over HTTP. Fatal failures answer
// with {"error": msg} and a non-2xx status; degraded modes (no vector
// index, no matching criteria) still answer 200 with empty payloads.
package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hirarag/config"
	"hirarag/internal/port"
	"hirarag/internal/usecase"
)

type Server struct {
	cfg      *config.Config
	searcher *usecase.Searcher
	syncer   *usecase.Syncer
	criteria *usecase.CriteriaAnalyzer
	store    port.MetadataStore
	index    port.VectorIndex
	log      zerolog.Logger
}

func New(cfg *config.Config, searcher *usecase.Searcher, syncer *usecase.Syncer, criteria *usecase.CriteriaAnalyzer, store port.MetadataStore, index port.VectorIndex, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		searcher: searcher,
		syncer:   syncer,
		criteria: criteria,
		store:    store,
		index:    index,
		log:      log,
	}
}

// Router builds the gin engine with all API routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	api := r.Group("/api")
	{
		api.POST("/search", s.handleSearch)
		api.GET("/search", s.handleSearch)
		api.POST("/sync", s.handleSync)
		api.GET("/metadata", s.handleMetadata)
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/status", s.handleStatus)
	}
	return r
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.Router().Run(addr)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

type searchRequest struct {
	Query   string `json:"query" form:"query"`
	Limit   int    `json:"limit" form:"limit"`
	Section string `json:"section" form:"section"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if c.Request.Method == http.MethodGet {
		req.Query = c.Query("query")
		req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
		req.Section = c.Query("section")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	if req.Section != "" {
		results, err := s.searcher.SearchBySection(c.Request.Context(), req.Query, req.Section, req.Limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	resp, err := s.searcher.Search(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type syncRequest struct {
	Force bool `json:"force"`
}

func (s *Server) handleSync(c *gin.Context) {
	var req syncRequest
	_ = c.ShouldBindJSON(&req) // empty body means default sync

	results, err := s.syncer.Sync(c.Request.Context(), req.Force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.criteria.Refresh()
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Metadata())
}

type analyzeRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	c.JSON(http.StatusOK, s.criteria.Analyze(req.Query))
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, usecase.BuildStatus(s.store, s.index, s.criteria))
}
