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

// Package cmd wires the firmware instance, its storage and diagnostics
// surface, together into a runnable binary. The radio I/O threads that
// drive Instance's PHY-facing callbacks are an external collaborator
// (the radio hardware abstraction) and are not part of this
// package; what runs here is everything around that boundary: config,
// persistence, the application bridge, housekeeping, and shutdown.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/maxpenner/dect-nr-plus-l2core/internal/appbridge"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/config"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/contact"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/db"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/diag"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/identity"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/kv"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/metrics"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/mmie"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/pprof"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/pubsub"
	"github.com/maxpenner/dect-nr-plus-l2core/internal/tpoint"
)

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dectl",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("dect-nr-plus-l2core - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := cleanup(ctx); err != nil {
			slog.Error("Failed to shutdown tracer", "error", err)
		}
	}()

	startBackgroundServices(cfg)

	database, err := db.MakeDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	kvStore, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			slog.Error("Failed to close kv", "error", err)
		}
	}()

	pubsubClient, err := pubsub.MakePubSub(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to pubsub: %w", err)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			slog.Error("Failed to close pubsub", "error", err)
		}
	}()

	firmware, err := newFirmware(cfg, database, kvStore, pubsubClient)
	if err != nil {
		return err
	}
	defer firmware.shutdown(ctx)

	firmware.start(ctx)

	setupShutdownHandlers(ctx, firmware, cleanup)

	return nil
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		// Fall back to info level for unrecognized log levels to prevent nil logger panic
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// setupTracing initializes OpenTelemetry tracing if configured.
// When tracing is not configured it returns a no-op cleanup function.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if cfg.Metrics.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	return initTracer(cfg)
}

// startBackgroundServices starts the pprof server and, when configured,
// the Prometheus scrape endpoint.
func startBackgroundServices(cfg *config.Config) {
	go pprof.CreatePProfServer(cfg)
	if err := metrics.CreateMetricsServer(cfg); err != nil {
		slog.Error("metrics server failed to start", "error", err)
	}
}

func initTracer(cfg *config.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "dect-nr-plus-l2core"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}

// firmware bundles the running Instance with everything wired around it:
// persistence, the diagnostics HTTP surface, the application bridge, and
// wall-clock housekeeping for one long-lived DECT transmission point.
type firmware struct {
	inst         *tpoint.Instance
	diagServer   *diag.Server
	housekeeping *tpoint.Housekeeping
	appServer    *appbridge.Server
	appClient    *appbridge.Client
	connIdxs     []int

	udpSource *appbridge.UDPSource
	udpSink   *appbridge.UDPSink

	diagDone chan error
	appGroup *errgroup.Group
	appStop  context.CancelFunc
}

const housekeepingSweepInterval = 30 * time.Second

// gormContactStore adapts the gorm-backed persistence functions to the
// firmware's ContactStore seam.
type gormContactStore struct {
	db *gorm.DB
}

var (
	_ tpoint.ContactStore      = (*gormContactStore)(nil)
	_ tpoint.CoordinationStore = kv.KV(nil)
)

func (s *gormContactStore) SaveContact(networkID uint32, c *contact.Contact) error {
	return db.SaveContact(s.db, networkID, c)
}

func (s *gormContactStore) DeleteContact(networkID, shortRadioDeviceID uint32) error {
	return db.DeleteContact(s.db, networkID, shortRadioDeviceID)
}

func (s *gormContactStore) SaveRadioCapability(networkID, shortRadioDeviceID uint32, raw []byte) error {
	return db.SaveRadioCapability(s.db, networkID, shortRadioDeviceID, raw)
}

// restoreContacts re-seeds the in-memory registry from the durable contact
// records of a previous run, so an FT does not lose its association state
// (or a PT its serving FT) on a crash or restart.
func restoreContacts(database *gorm.DB, cfg *config.Config, inst *tpoint.Instance) error {
	recs, err := db.LoadContacts(database, cfg.MAC.NetworkID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		id, err := identity.New(rec.NetworkID, rec.LongRadioDeviceID, rec.ShortRadioDeviceID)
		if err != nil {
			slog.Warn("Skipping persisted contact with invalid identity", "error", err)
			continue
		}
		c := contact.Restore(
			id,
			contact.PTStateFromString(rec.PTState),
			contact.FTStateFromString(rec.FTState),
			rec.RetryCount,
			rec.MissedBeacons,
			contact.DefaultAssociationConfig(),
		)
		if raw, err := db.LoadRadioCapability(database, rec.NetworkID, rec.ShortRadioDeviceID); err == nil && len(raw) > 0 {
			var capability mmie.RDCapabilityIE
			if err := capability.Unpack(raw); err == nil {
				c.Capability = &capability
			}
		}
		inst.Contacts.Add(c)
	}
	if len(recs) > 0 {
		slog.Info("Restored persisted contacts", "count", len(recs))
	}
	return nil
}

// newFirmware constructs the Instance and everything wired around it from
// cfg, but does not yet start any of it.
func newFirmware(cfg *config.Config, database *gorm.DB, kvStore kv.KV, ps pubsub.PubSub) (*firmware, error) {
	role := tpoint.RoleFT
	if cfg.MAC.Role == config.RolePT {
		role = tpoint.RolePT
	}

	inst := tpoint.New(tpoint.Config{
		Role:             role,
		NetworkID:        cfg.MAC.NetworkID,
		ShortRDID:        cfg.MAC.ShortRadioDeviceID,
		HARQProcesses:    cfg.MAC.HARQProcesses,
		HARQALenMax:      cfg.MAC.HARQALenMax,
		HARQZ:            cfg.MAC.HARQZ,
		BeaconPeriod:     cfg.MAC.BeaconPeriodSamples,
		PrepareDuration:  cfg.MAC.PrepareDurationSamples,
		SamplesPerSecond: cfg.MAC.SamplesPerSecond,
	})
	inst.SetEventBus(ps)
	inst.SetContactStore(&gormContactStore{db: database})
	inst.SetCoordination(kvStore)
	if cfg.Metrics.Enabled {
		inst.SetMetrics(metrics.NewMetrics())
	}

	if err := restoreContacts(database, cfg, inst); err != nil {
		return nil, fmt.Errorf("failed to restore persisted contacts: %w", err)
	}

	housekeeping, err := tpoint.NewHousekeeping(inst)
	if err != nil {
		return nil, fmt.Errorf("failed to create housekeeping scheduler: %w", err)
	}

	appServer := appbridge.NewServer(cfg.AppBridge.NDatagram, cfg.AppBridge.NDatagramMaxByte, nil)

	connIdxs := make([]int, cfg.AppBridge.NConnections)
	for i := range connIdxs {
		connIdxs[i] = i
	}

	var (
		sink      appbridge.Sink = &discardSink{}
		udpSource *appbridge.UDPSource
		udpSink   *appbridge.UDPSink
	)
	if cfg.AppBridge.Transport == config.AppBridgeTransportUDP {
		var err error
		udpSource, err = appbridge.NewUDPSource(cfg.AppBridge.UDPIngressBasePort, cfg.AppBridge.NConnections)
		if err != nil {
			return nil, fmt.Errorf("failed to bind application bridge ingress ports: %w", err)
		}
		udpSink, err = appbridge.NewUDPSink(cfg.AppBridge.UDPEgressHost, cfg.AppBridge.UDPEgressBasePort, cfg.AppBridge.NConnections)
		if err != nil {
			return nil, fmt.Errorf("failed to dial application bridge egress ports: %w", err)
		}
		sink = udpSink
	}

	appClient := appbridge.NewClient(cfg.AppBridge.NDatagram, cfg.AppBridge.NDatagramMaxByte, nil, sink)

	return &firmware{
		inst:         inst,
		diagServer:   diag.New(cfg, database, inst, ps),
		housekeeping: housekeeping,
		appServer:    appServer,
		appClient:    appClient,
		connIdxs:     connIdxs,
		udpSource:    udpSource,
		udpSink:      udpSink,
		diagDone:     make(chan error, 1),
	}, nil
}

// discardSink is the egress Sink used until a concrete transport (UDP
// socket or TUN device) is wired in; it exists so the application bridge
// can be exercised end-to-end without a real network path.
type discardSink struct{}

func (*discardSink) WriteDatagram(int, []byte) error { return nil }

// start brings every wired component up and begins serving diagnostics in
// the background. The Application I/O thread group (one server forwarder
// plus one client forwarder per application instance) is brought up as its
// own errgroup.Group so independently-failing background workers are
// supervised together.
func (f *firmware) start(ctx context.Context) {
	const defaultSweepSeconds = housekeepingSweepInterval
	if err := f.housekeeping.Start(defaultSweepSeconds); err != nil {
		slog.Error("Failed to start housekeeping scheduler", "error", err)
	}

	if clash, err := f.inst.ClaimLocalIdentity(ctx, 2*housekeepingSweepInterval); err != nil {
		slog.Error("Failed to claim local identity", "error", err)
	} else if clash {
		slog.Error("Local short RD ID is already in use by another live instance; check the fleet configuration")
	}

	go func() {
		f.diagDone <- f.diagServer.Run(ctx)
	}()
	f.diagServer.Ready.Store(true)

	appCtx, cancel := context.WithCancel(ctx)
	f.appStop = cancel
	f.appGroup, appCtx = errgroup.WithContext(appCtx)

	if f.udpSource != nil {
		f.appGroup.Go(func() error {
			f.udpSource.Run(appCtx, f.appServer)
			return nil
		})
	}
	f.appGroup.Go(func() error {
		f.appClient.RunEgress(appCtx, f.connIdxs)
		return nil
	})

	slog.Info("Firmware instance ready", "role", f.inst.Role)
}

// shutdown tears every wired component back down.
func (f *firmware) shutdown(ctx context.Context) {
	f.diagServer.Ready.Store(false)
	f.appServer.SetImpermeable()
	if err := f.housekeeping.Stop(); err != nil {
		slog.Error("Failed to stop housekeeping scheduler", "error", err)
	}

	if f.appStop != nil {
		f.appStop()
	}
	if f.appGroup != nil {
		if err := f.appGroup.Wait(); err != nil {
			slog.Error("Application bridge worker stopped with error", "error", err)
		}
	}
	if f.udpSink != nil {
		if err := f.udpSink.Close(); err != nil {
			slog.Error("Failed to close application bridge egress sockets", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second) //nolint:mnd
	defer cancel()
	if err := f.diagServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to stop diagnostics server", "error", err)
	}
}

// setupShutdownHandlers registers an orderly-shutdown callback with
// ztrue/shutdown and blocks listening for SIGINT/SIGKILL/SIGTERM/SIGQUIT/
// SIGHUP. Every wired component is asked to drain within one queue-poll
// interval before the process exits.
func setupShutdownHandlers(ctx context.Context, f *firmware, cleanup func(context.Context) error) {
	stop := func(sig os.Signal) {
		slog.Error("Shutting down due to signal", "signal", sig)

		wg := new(sync.WaitGroup)

		wg.Add(1)
		go func() {
			defer wg.Done()
			f.shutdown(ctx)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if cleanup != nil {
				const timeout = 5 * time.Second
				shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				if err := cleanup(shutdownCtx); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}
		}()

		const timeout = 10 * time.Second

		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			slog.Info("All components stopped, shutting down gracefully")
			os.Exit(0)
		case <-time.After(timeout):
			slog.Error("Shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}
	defer stop(syscall.SIGINT)

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}
