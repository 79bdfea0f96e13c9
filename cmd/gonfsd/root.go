package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lunixbochs/gonfsd/internal/config"
	"github.com/lunixbochs/gonfsd/internal/logger"
	"github.com/lunixbochs/gonfsd/internal/metrics"
	"github.com/lunixbochs/gonfsd/internal/mount"
	"github.com/lunixbochs/gonfsd/internal/nfs3"
	"github.com/lunixbochs/gonfsd/internal/portmap"
	"github.com/lunixbochs/gonfsd/internal/rpc"
	"github.com/lunixbochs/gonfsd/internal/server"
	"github.com/lunixbochs/gonfsd/internal/telemetry"
	"github.com/lunixbochs/gonfsd/internal/vfs"
	"github.com/lunixbochs/gonfsd/internal/vfs/vfsmem"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "gonfsd",
		Short: "A user-space NFSv3 server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.String("server.listen_addr", "", "NFSv3/MOUNT/PORTMAP listen address (host:port)")
	flags.String("server.export_name", "", "export path advertised to clients")
	flags.Bool("server.read_only", false, "reject every mutating NFSv3 procedure")
	flags.Bool("server.require_privileged_source_port", false, "reject clients not connecting from a port below 1024")
	flags.String("logging.level", "", "DEBUG, INFO, WARN, or ERROR")
	flags.String("logging.format", "", "text or json")
	flags.Bool("metrics.enabled", false, "serve Prometheus metrics")
	flags.String("metrics.listen_addr", "", "metrics HTTP listen address")
	flags.Bool("telemetry.enabled", false, "export OpenTelemetry traces")
	flags.String("telemetry.endpoint", "", "OTLP gRPC endpoint")

	for _, name := range []string{
		"server.listen_addr", "server.export_name", "server.read_only", "server.require_privileged_source_port",
		"logging.level", "logging.format",
		"metrics.enabled", "metrics.listen_addr",
		"telemetry.enabled", "telemetry.endpoint",
	} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.TelemetryConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	var nfsMetrics *metrics.NFS
	if cfg.Metrics.Enabled {
		var handler http.Handler
		nfsMetrics, handler = metrics.NewNFS()
		metricsSrv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux(cfg.Metrics.Path, handler)}
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.ListenAddr, "path", cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	caps := vfs.ReadWrite
	if cfg.Server.ReadOnly {
		caps = vfs.ReadOnly
	}
	fs := vfsmem.New(caps)
	codec := vfs.NewCodec(fs)

	mountEvents := make(chan bool, 1)
	go func() {
		for mounted := range mountEvents {
			if mounted {
				logger.Info("client mounted export", "export", cfg.Server.ExportName)
			} else {
				logger.Info("client unmounted export", "export", cfg.Server.ExportName)
			}
		}
	}()

	nfsHandler := nfs3.NewHandler(fs)
	mountHandler := mount.NewHandler(codec, cfg.Server.ExportName, mountEvents)
	registry := portmap.NewRegistry()
	portmapHandler := portmap.NewHandler(registry)
	tracker := rpc.NewTracker()

	shared := server.NewContext(0, cfg.Server.ExportName, nfsHandler, mountHandler, portmapHandler, tracker, nfsMetrics)

	acceptor, err := server.Listen(cfg.Server.ListenAddr, shared, cfg.Server.RequirePrivilegedSourcePort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.ListenAddr, err)
	}
	defer acceptor.Close()

	shared.ListenPort = acceptor.Addr().(*net.TCPAddr).Port
	registerPortmapMappings(registry, acceptor)

	logger.Info("gonfsd listening", "addr", acceptor.Addr().String(), "export", cfg.Server.ExportName)
	if err := acceptor.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// registerPortmapMappings pre-populates the PORTMAP registry with the
// three services this binary actually serves, all on the one TCP port
// acceptor is bound to — this server never listens on UDP, so only the
// TCP mapping is registered for each.
func registerPortmapMappings(registry *portmap.Registry, acceptor *server.Acceptor) {
	port := uint32(acceptor.Addr().(*net.TCPAddr).Port)
	for _, m := range []portmap.Mapping{
		{Prog: portmap.ProgramNumber, Vers: portmap.Version, Prot: portmap.ProtoTCP, Port: port},
		{Prog: mount.ProgramNumber, Vers: mount.Version, Prot: portmap.ProtoTCP, Port: port},
		{Prog: nfs3.ProgramNumber, Vers: nfs3.Version, Prot: portmap.ProtoTCP, Port: port},
	} {
		registry.Set(m)
	}
}

func mux(path string, handler http.Handler) http.Handler {
	m := http.NewServeMux()
	m.Handle(path, handler)
	return m
}
