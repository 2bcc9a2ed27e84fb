package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"econ-dashboard/src/cache"
	"econ-dashboard/src/dashboard"
	"econ-dashboard/src/interfaces"
	"econ-dashboard/src/logger"
	"econ-dashboard/src/models"
	"econ-dashboard/src/registry"
)

const requestIDHeader = "X-Request-ID"

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Assembler *dashboard.Assembler
	Registry  *registry.Registry
	Cache     *cache.SeriesCache
	Origin    interfaces.ISeriesOrigin

	engine *gin.Engine
	http   *http.Server

	// WebSocket clients, owned by the hub loop
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	broadcast  chan models.MEvent
	register   chan *Client
	unregister chan *Client
	reply      chan directMessage
	done       chan struct{}
	stopOnce   sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, assembler *dashboard.Assembler, reg *registry.Registry,
	seriesCache *cache.SeriesCache, origin interfaces.ISeriesOrigin, log *logger.Logger) *DashboardServer {

	if log == nil {
		log = logger.NewNop()
	}
	if cfg.LogLevel != "DEBUG" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:    cfg,
		Logger:    log,
		Assembler: assembler,
		Registry:  reg,
		Cache:     seriesCache,
		Origin:    origin,
		engine:    gin.New(),
		clients:   make(map[*Client]struct{}),
		// Buffered so registry and cache callers never wait on slow sockets
		broadcast:  make(chan models.MEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		reply:      make(chan directMessage),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestID(), s.cors())
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *DashboardServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)

		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), id)
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")

	api.GET("/health", s.getHealth)

	api.GET("/indicators", s.listIndicators)
	api.GET("/indicators/:id", s.getIndicator)
	api.GET("/indicators/:id/metadata", s.getMetadata)
	api.DELETE("/indicators/:id", s.deleteIndicator)
	api.GET("/search", s.search)

	api.GET("/dashboard", s.getDashboard)
	api.POST("/dashboard", s.postDashboard)
	api.GET("/chart/:file", s.getChart)

	api.POST("/upload", s.upload)

	api.POST("/cache/invalidate/:id", s.invalidateSeries)
	api.DELETE("/cache", s.clearCache)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until Stop is called.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	go s.runHub()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight requests and disconnects every WebSocket client.
func (s *DashboardServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

// Connections returns the number of live WebSocket clients.
func (s *DashboardServer) Connections() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
