// Package server exposes the live countdown over a small local HTTP API,
// for status bars, dashboards and signage screens.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smokyabdulrahman/vakit/internal/countdown"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

// MaxScheduleDays caps /api/schedule?days=N.
const MaxScheduleDays = 31

// Driver is the part of *countdown.Driver the API reads from.
type Driver interface {
	Snapshot(ctx context.Context) (countdown.Snapshot, error)
	Refresh() bool
}

// Server serves the status API.
type Server struct {
	driver Driver
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router.
func New(driver Driver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	// Any page may read the countdown. Refresh is limited to local origins
	// by localOrigin.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	s := &Server{driver: driver, logger: logger, engine: r}

	r.GET("/healthz", s.health)
	api := r.Group("/api")
	{
		api.GET("/remaining", s.remaining)
		api.GET("/schedule", s.schedule)
		api.POST("/refresh", localOrigin(), s.refresh)
	}
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status API listening", zap.String("addr", addr))
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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type remainingResponse struct {
	Next      string `json:"next"`
	Current   string `json:"current"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Seconds   int    `json:"seconds"`
	Countdown string `json:"countdown"`
	At        string `json:"at"`
	Valid     bool   `json:"valid"`
	Status    string `json:"status,omitempty"`
}

func (s *Server) remaining(c *gin.Context) {
	snap, err := s.driver.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if !snap.OK {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "prayer times are not available",
			"status": snap.LastStatus,
		})
		return
	}

	r := snap.Remaining
	c.JSON(http.StatusOK, remainingResponse{
		Next:      r.Next.DisplayName(),
		Current:   snap.Current.DisplayName(),
		Hours:     r.Hours,
		Minutes:   r.Minutes,
		Seconds:   r.Seconds,
		Countdown: r.Clock(),
		At:        snap.Target.String(),
		Valid:     snap.Valid,
		Status:    snap.LastStatus,
	})
}

func (s *Server) schedule(c *gin.Context) {
	days := 1
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxScheduleDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 31"})
			return
		}
		days = n
	}

	snap, err := s.driver.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	records := snap.Schedule.Range(snap.Now.UTC(), days)
	if records == nil {
		records = []prayer.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"days": records, "valid": snap.Valid})
}

func (s *Server) refresh(c *gin.Context) {
	if !s.driver.Refresh() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "refresh queue is full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": countdown.StatusFetching})
}

// localOrigin rejects browser requests sent from a page that is not served
// from a loopback host. Requests without an Origin header pass.
func localOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && !isLoopbackOrigin(origin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "refresh is only allowed from local pages"})
			return
		}
		c.Next()
	}
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("http request", fields...)
			return
		}
		logger.Debug("http request", fields...)
	}
}
