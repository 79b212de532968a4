// Package server streams a running scene to websocket viewers and exposes
// presets and stored runs over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/pocketphys/internal/config"
	"github.com/san-kum/pocketphys/internal/sim"
	"github.com/san-kum/pocketphys/internal/storage"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	scene   *config.Scene
	store   *storage.Store
	hub     *Hub
	router  *gin.Engine
	started time.Time
}

func New(sc *config.Scene, store *storage.Store) *Server {
	s := &Server{
		scene:   sc.Clone(),
		store:   store,
		hub:     NewHub(),
		router:  gin.New(),
		started: time.Now(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) Hub() *Hub             { return s.hub }
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/scene", s.getScene)
		v1.GET("/presets", s.listPresets)
		v1.GET("/presets/:name", s.getPreset)

		runs := v1.Group("/runs")
		{
			runs.GET("", s.listRuns)
			runs.GET("/:id", s.getRun)
			runs.GET("/:id/export", s.exportRun)
		}
	}
	s.router.GET("/ws", s.hub.ServeWS)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"scene":   s.scene.Name,
		"clients": s.hub.Clients(),
		"uptime":  time.Since(s.started).String(),
	})
}

func (s *Server) getScene(c *gin.Context) {
	c.YAML(http.StatusOK, s.scene)
}

func (s *Server) listPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": config.ListPresets()})
}

func (s *Server) getPreset(c *gin.Context) {
	sc := config.GetPreset(c.Param("name"))
	if sc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown preset"})
		return
	}
	c.YAML(http.StatusOK, sc)
}

func (s *Server) listRuns(c *gin.Context) {
	runs, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	meta, err := s.store.Load(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (s *Server) exportRun(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Load(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.Header("Content-Type", "application/json")
	if err := s.store.ExportJSON(id, c.Writer); err != nil {
		c.Error(err)
	}
}

// Run serves HTTP on addr and steps the scene in real time at fps, pushing
// every frame to connected viewers, until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	world, _, err := s.scene.Build()
	if err != nil {
		return err
	}
	pairing, err := sim.ParsePairing(s.scene.Pairing)
	if err != nil {
		return err
	}
	simulator := sim.New(world, pairing)
	simulator.AddObserver(s.hub)

	srv := &http.Server{Addr: addr, Handler: s.router}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := simulator.RunRealtime(ctx, sim.NewEngine(), time.Second/time.Duration(fps), nil)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
