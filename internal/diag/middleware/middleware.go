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

// Package middleware holds gin middleware shared by the diagnostics API:
// injecting the gorm handle, tagging spans, and exposing the readiness
// flag to handlers.
package middleware

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/config"
)

// DatabaseProvider injects db into the gin context under "DB", binding it
// to the request context for tracing when OTLP export is configured.
func DatabaseProvider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GetConfig().Metrics.OTLPEndpoint != "" {
			c.Set("DB", db.WithContext(c.Request.Context()))
		} else {
			c.Set("DB", db)
		}
		c.Next()
	}
}

// TracingProvider tags the active span with the request method and path
// when OTLP export is configured.
func TracingProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GetConfig().Metrics.OTLPEndpoint != "" {
			span := trace.SpanFromContext(c.Request.Context())
			if span.IsRecording() {
				span.SetAttributes(
					attribute.String("http.method", c.Request.Method),
					attribute.String("http.path", c.Request.URL.Path),
				)
			}
		}
		c.Next()
	}
}

// ReadinessProvider injects the readiness flag into the gin context so
// handlers (the healthcheck endpoint) can report whether the firmware
// instance has finished initializing.
func ReadinessProvider(ready *atomic.Bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("Ready", ready)
		c.Next()
	}
}
