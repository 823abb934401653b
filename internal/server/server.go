// Package server exposes schema browsing and scaffold previews over HTTP.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"scaffoldgen/internal/db"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/pkg/config"
)

// ConnectFunc opens a live schema provider.
type ConnectFunc func(driver, dsn string, timeoutSec int) (*db.Conn, error)

// Server holds the active schema provider. A provider is either a database
// connection made through /api/connect or a static schema given at startup.
type Server struct {
	mu       sync.RWMutex
	cfg      config.AppConfig
	provider introspect.Provider
	conn     *db.Conn
	connect  ConnectFunc
	webDir   string
}

// Option configures a Server.
type Option func(*Server)

// WithProvider starts the server with p as the active provider.
func WithProvider(p introspect.Provider) Option {
	return func(s *Server) {
		s.provider = p
		if c, ok := p.(*db.Conn); ok {
			s.conn = c
		}
	}
}

// WithConnect replaces db.Connect.
func WithConnect(fn ConnectFunc) Option {
	return func(s *Server) { s.connect = fn }
}

// WithWebDir serves static files from dir for every non API route.
func WithWebDir(dir string) Option {
	return func(s *Server) { s.webDir = dir }
}

// New returns a server for cfg.
func New(cfg config.AppConfig, opts ...Option) *Server {
	cfg.ApplyDefaults()
	s := &Server{cfg: cfg, connect: db.Connect}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/getConnect", s.getConnect)
		api.POST("/connect", s.postConnect)
		api.GET("/tables", s.listTables)
		api.GET("/tables/:table", s.describeTable)
		api.POST("/scaffold", s.generate)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.webDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.webDir))))
	}
	return router
}

// HTTPServer wraps the router in an http.Server listening on the configured port.
func (s *Server) HTTPServer() *http.Server {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	logger.Info("listening on %s", addr)
	logger.Info("registered dialects: %v", db.RegisteredDialects())
	return &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Close releases the active connection, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn, s.provider = nil, nil
	return err
}

func (s *Server) active() (introspect.Provider, *db.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider, s.conn
}

func (s *Server) setActive(c *db.Conn, dbCfg config.DBConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn != c {
		if err := s.conn.Close(); err != nil {
			logger.Warn("closing previous connection: %v", err)
		}
	}
	s.conn, s.provider = c, c
	s.cfg.Database = dbCfg
}

func (s *Server) settings() config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}
