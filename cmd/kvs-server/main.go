// Command kvs-server runs the Ignite TCP server, grounded on the reference
// implementation's kvs-server binary (original_source/src/bin/kvs-server.rs):
// it binds an address, opens a data directory with the requested storage
// engine, and serves Set/Get/Remove requests until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignite/internal/altengine"
	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/internal/server"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		engineKind string
		dataDir    string
		workers    int
	)

	cmd := &cobra.Command{
		Use:     "kvs-server",
		Short:   "Run the Ignite key-value store server",
		Version: "0.1.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), addr, engineKind, dataDir, workers)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&addr, "addr", "a", options.DefaultListenAddr, "TCP address to bind")
	flags.StringVarP(&engineKind, "engine", "e", options.DefaultEngineKind, "storage engine to use (kvs or alt)")
	flags.StringVar(&dataDir, "data-dir", options.DefaultDataDir, "directory to store data in")
	flags.IntVar(&workers, "workers", 0, "worker pool size (0 resolves to runtime.NumCPU())")

	return cmd
}

func run(ctx context.Context, addr, engineKind, dataDir string, workers int) error {
	log := logger.New("kvs-server")
	log.Infow("starting server", "addr", addr, "engine", engineKind, "dataDir", dataDir)

	opts := options.NewDefaultOptions()
	options.WithListenAddr(addr)(&opts)
	options.WithEngineKind(engineKind)(&opts)
	options.WithDataDir(dataDir)(&opts)
	options.WithWorkers(workers)(&opts)

	kv, err := openEngine(ctx, &opts, log)
	if err != nil {
		return err
	}
	defer kv.Close()

	srv, err := server.New(&server.Config{
		Addr:    opts.ListenAddr,
		Engine:  kv,
		Workers: opts.ResolvedWorkers(),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case <-ctx.Done():
		log.Infow("shutdown signal received, draining connections")
		return srv.Shutdown()
	case err := <-errCh:
		return err
	}
}

func openEngine(ctx context.Context, opts *options.Options, log *zap.SugaredLogger) (engine.KVEngine, error) {
	switch opts.EngineKind {
	case "", "kvs":
		return engine.New(ctx, &engine.Config{Options: opts, Logger: log})
	case "alt":
		return altengine.New(&altengine.Config{Options: opts, Logger: log})
	default:
		return nil, fmt.Errorf("unknown engine %q", opts.EngineKind)
	}
}
