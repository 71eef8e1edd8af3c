// SPDX-License-Identifier: AGPL-3.0-or-later
// dect-nr-plus-l2core - A DECT NR+ layer-2 MAC protocol engine
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package diag serves a same-origin, session-less, read-only HTTP surface
// exposing firmware health and a snapshot of contact/HARQ state. It is
// deliberately read-only: no sessions, CORS, or login, since this engine
// has no user accounts.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	ratelimitlib "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/config"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/diag/middleware"
	diagratelimit "github.com/maxpenner/dect-nr-plus-l2core/internal/diag/ratelimit"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/pubsub"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

const (
	defTimeout     = 10 * time.Second
	rateLimitRate  = time.Second
	rateLimitLimit = 20
	readHdrTimeout = 3 * time.Second
)

// Server wraps the diagnostics http.Server with the Ready flag the
// readiness middleware reports against.
type Server struct {
	*http.Server
	Ready *atomic.Bool
}

// New builds the diagnostics server. inst is the firmware instance whose
// contact registry and HARQ pools the status endpoints report on; db backs
// both the gorm-based rate limiter and (indirectly, via middleware) any
// future persisted diagnostics. ps, if non-nil, backs the live-events
// websocket (nil disables it, e.g. in tests that do not need it).
func New(cfg *config.Config, db *gorm.DB, inst *tpoint.Instance, ps pubsub.PubSub) *Server {
	if cfg.LogLevel == config.LogLevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ready := &atomic.Bool{}

	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.PProf.Enabled {
		pprof.Register(r)
	}

	if cfg.Metrics.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("dect-nr-plus-l2core"))
		r.Use(middleware.TracingProvider())
	}

	r.Use(middleware.DatabaseProvider(db))
	r.Use(middleware.ReadinessProvider(ready))
	r.Use(middleware.PubSubProvider(ps))
	r.Use(func(c *gin.Context) {
		c.Set("Firmware", inst)
		c.Next()
	})

	store := diagratelimit.NewGORMStore(&diagratelimit.GORMOptions{
		DB:    db,
		Rate:  rateLimitRate,
		Limit: rateLimitLimit,
	})
	rl := ratelimitlib.RateLimiter(store, &ratelimitlib.Options{
		ErrorHandler: func(c *gin.Context, info ratelimitlib.Info) {
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	applyRoutes(r, rl)

	s := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Bind, cfg.HTTP.Port),
		Handler:           r,
		ReadTimeout:       defTimeout,
		WriteTimeout:      defTimeout,
		ReadHeaderTimeout: readHdrTimeout,
	}

	return &Server{Server: s, Ready: ready}
}

// Run starts serving and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("diag: http server listening", "address", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx) //nolint:wrapcheck
	case err := <-errCh:
		return err
	}
}
