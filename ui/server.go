package ui

import (
	"net/http"

	"casesim/app"
	"casesim/domain/model"
	"casesim/domain/transform"
	"casesim/internal"
	"casesim/ports"

	"github.com/gin-gonic/gin"
)

// Server exposes the simulation engines over HTTP for the visualization
// front end and batch callers.
type Server struct {
	router   *gin.Engine
	simSvc   *app.SimulationService
	sweepSvc *app.SweepService
	registry *transform.Registry
	fit      *model.FittedModel
	runs     ports.RunRepository // optional
	logger   *internal.Logger

	maxDrawCount int
}

// ServerOptions configures the HTTP surface.
type ServerOptions struct {
	GinMode      string
	MaxDrawCount int
	Runs         ports.RunRepository
}

// NewServer wires routes over already-constructed services.
func NewServer(fit *model.FittedModel, registry *transform.Registry, simSvc *app.SimulationService, sweepSvc *app.SweepService, opts ServerOptions) *Server {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	s := &Server{
		router:       gin.New(),
		simSvc:       simSvc,
		sweepSvc:     sweepSvc,
		registry:     registry,
		fit:          fit,
		runs:         opts.Runs,
		logger:       internal.DefaultLogger,
		maxDrawCount: opts.MaxDrawCount,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/simulate", s.handleSimulate)
		api.POST("/sweep", s.handleSweep)
		api.GET("/variables", s.handleVariables)
		api.GET("/outcomes", s.handleOutcomes)
		api.GET("/runs", s.handleRuns)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	s.logger.Info("API listening on %s", addr)
	return s.router.Run(addr)
}
