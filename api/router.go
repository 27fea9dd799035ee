package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/duo-platformer/api/i"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	service_i "github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Router manages the status HTTP server and its controllers.
type Router struct {
	addr           string
	baseURL        string
	controllers    []i.Controller
	metricsHandler http.Handler
	logger         service_i.Logger
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr           string // Address to listen on
	BaseURL        string // Base URL for API routes
	Controllers    []i.Controller
	MetricsHandler http.Handler // Served on /metrics when set.
	Logger         service_i.Logger
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	l := config.Logger
	if l == nil {
		l = logger.Discard()
	}
	return &Router{
		addr:           config.Addr,
		baseURL:        config.BaseURL,
		controllers:    config.Controllers,
		metricsHandler: config.MetricsHandler,
		logger:         l,
	}
}

// Handler builds the gin engine with every route registered.
//
// Controllers are mounted under <baseURL>/v1. The metrics handler, when present, is mounted
// at /metrics outside the versioned group.
func (r *Router) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group(r.baseURL)
	{
		v1 := api.Group("/v1")
		for _, c := range r.controllers {
			c.Register(v1)
		}
	}

	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
	return router
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (r *Router) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    r.addr,
		Handler: r.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info(fmt.Sprintf("status API listening on %s", r.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
