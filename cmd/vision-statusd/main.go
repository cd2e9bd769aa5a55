package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/vision-status/internal/capability"
	"github.com/signalsfoundry/vision-status/internal/config"
	"github.com/signalsfoundry/vision-status/internal/logging"
	"github.com/signalsfoundry/vision-status/internal/observability"
	"github.com/signalsfoundry/vision-status/internal/statusapi"
	"github.com/signalsfoundry/vision-status/internal/telemetry"
	"github.com/signalsfoundry/vision-status/internal/vision"
	"github.com/signalsfoundry/vision-status/internal/warning"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	grpcAddr := flag.String("grpc-addr", "", "TCP address the status gRPC server listens on")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics")
	replayFile := flag.String("replay", "", "Replay telemetry from this YAML script instead of MQTT")
	replayMode := flag.String("replay-mode", "", "Replay pacing: realtime or accelerated")
	capsFile := flag.String("capabilities", "", "Path to a YAML product capability table")
	flag.Parse()

	cfg, err := config.Load(*configPath, func(c *config.Config) {
		setIfNotEmpty(&c.GRPCAddr, *grpcAddr)
		setIfNotEmpty(&c.MetricsAddr, *metricsAddr)
		setIfNotEmpty(&c.Replay.File, *replayFile)
		setIfNotEmpty(&c.Replay.Mode, *replayMode)
		setIfNotEmpty(&c.CapabilitiesFile, *capsFile)
	})
	if err != nil {
		logging.NewFromEnv().Error(context.Background(), "failed to load configuration", logging.Err(err))
		os.Exit(2)
	}

	log := logging.New(cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(ctx, "vision-statusd exited", logging.Err(err))
		os.Exit(1)
	}
}

// run wires the engine, telemetry, warnings and the status server, and
// blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg config.Config, log logging.Logger, lis net.Listener) error {
	cfg.Tracing.TelemetrySource = "mqtt"
	if cfg.UsesReplay() {
		cfg.Tracing.TelemetrySource = "replay"
	}
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	reg := prometheus.NewRegistry()
	rpcMetrics, err := observability.NewRPCCollector(reg)
	if err != nil {
		return err
	}
	statusMetrics, err := observability.NewStatusCollector(reg)
	if err != nil {
		return err
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, statusMetrics.Handler(), log)

	engine := vision.New(vision.NewInputs(), log,
		vision.WithCapabilities(loadCapabilities(log, cfg.CapabilitiesFile)),
		vision.WithMetricsRecorder(statusMetrics),
	)
	defer engine.Close()
	// Observers must be in place before any source delivers, or detection
	// updates for earlier positions never reach the sensor map.
	engine.Start()

	codec, err := telemetry.CodecByName(cfg.MQTT.Codec)
	if err != nil {
		return err
	}
	bindOpts := []telemetry.BindOption{
		telemetry.WithCodec(codec),
		telemetry.WithLogger(log),
		telemetry.WithMetricsRecorder(statusMetrics),
	}

	g, gctx := errgroup.WithContext(ctx)

	var dispatcher warning.Dispatcher
	if cfg.UsesReplay() {
		player, err := newReplay(cfg, codec, engine, bindOpts, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := player.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		dispatcher = warning.LogDispatcher{Log: log}
	} else {
		src := telemetry.NewMQTTSource(telemetry.MQTTConfig{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientID,
			TopicPrefix:    cfg.MQTT.TopicPrefix,
			QoS:            cfg.MQTT.QoS,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
		}, telemetry.WithMQTTCodec(codec), telemetry.WithMQTTLogger(log))
		defer src.Close()
		bindAll(src, engine, bindOpts, log)
		if err := src.Connect(ctx); err != nil {
			return err
		}
		dispatcher = warning.NewMQTTDispatcher(src.Client(), cfg.MQTT.WarningTopic, cfg.MQTT.QoS, codec)
	}

	sender := warning.NewSender(dispatcher, log, warning.WithMetricsRecorder(statusMetrics))
	g.Go(func() error {
		return warning.Watch(gctx, engine.UserAvoidanceEnabled(), sender, log)
	})

	server := statusapi.NewServer(statusapi.NewService(engine, sender, log), log, rpcMetrics)
	g.Go(func() error {
		log.Info(ctx, "starting vision status gRPC server", logging.String("addr", lis.Addr().String()))
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down vision status server")

		// Closing the engine ends every WatchStatus stream so GracefulStop can
		// drain.
		engine.Close()
		stopServer(server, cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func newReplay(cfg config.Config, codec telemetry.Codec, engine *vision.Engine, opts []telemetry.BindOption, log logging.Logger) (*telemetry.Player, error) {
	script, err := telemetry.LoadReplayFile(cfg.Replay.File)
	if err != nil {
		return nil, err
	}
	mode, err := telemetry.ParseMode(cfg.Replay.Mode)
	if err != nil {
		return nil, err
	}
	src := telemetry.NewLocalSource()
	bindAll(src, engine, opts, log)
	log.Info(context.Background(), "replaying telemetry",
		logging.String("file", cfg.Replay.File),
		logging.Int("frames", len(script.Frames)),
	)
	return telemetry.NewPlayer(script, src, codec, mode, log), nil
}

// bindAll binds every engine input; a channel that cannot be bound keeps its
// default value.
func bindAll(src telemetry.Source, engine *vision.Engine, opts []telemetry.BindOption, log logging.Logger) {
	if err := telemetry.BindInputs(src, engine.Inputs(), opts...); err != nil {
		log.Warn(context.Background(), "some telemetry channels are unbound", logging.Err(err))
	}
}

func stopServer(server *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		server.Stop()
	}
}

func serveMetrics(addr string, handler http.Handler, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func loadCapabilities(log logging.Logger, path string) capability.Lookup {
	if path == "" {
		return capability.DefaultTable()
	}
	table, err := capability.LoadTableFile(path)
	if err != nil {
		log.Warn(context.Background(), "using built-in capability table", logging.String("path", path), logging.Err(err))
		return capability.DefaultTable()
	}
	log.Info(context.Background(), "loaded capability table", logging.String("path", path), logging.Int("products", table.Len()))
	return table
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
