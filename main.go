package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/freekieb7/mimetest/config"
	"github.com/freekieb7/mimetest/http"
	"github.com/freekieb7/mimetest/routes"
	"github.com/freekieb7/mimetest/telemetry"
)

const (
	name    = "mimetest"
	version = "0.1.0"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   name + " [host] [port]",
		Short: "Serve sample files to test how clients handle Content-Type and Content-Disposition",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ApplyArgs(args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			cmd.SilenceUsage = true
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&cfg.CorrectMIMEs, "correct-mimes", cfg.CorrectMIMEs, "serve the real media type instead of a mytype/* placeholder")
	flags.BoolVar(&cfg.Download, "download", cfg.Download, "send attachment dispositions instead of inline")
	flags.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "host:port of an OTLP gRPC collector (plaintext), empty disables export")
	flags.StringVar(&cfg.HTTP3CertFile, "http3-cert", cfg.HTTP3CertFile, "TLS certificate file, enables HTTP/3 together with --http3-key")
	flags.StringVar(&cfg.HTTP3KeyFile, "http3-key", cfg.HTTP3KeyFile, "TLS key file for HTTP/3")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for in-flight requests on shutdown")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    name,
		ServiceVersion: version,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil {
			log.Printf("telemetry shutdown: %v", shutdownErr)
		}
	}()

	router := http.NewRouter()
	router.Logger = tel.Logger

	routes.Register(router, routes.Options{
		CorrectMIMEs: cfg.CorrectMIMEs,
		Download:     cfg.Download,
	})

	server := http.NewServer(name, router)
	server.ShutdownTimeout = cfg.ShutdownTimeout
	server.HTTP3CertFile = cfg.HTTP3CertFile
	server.HTTP3KeyFile = cfg.HTTP3KeyFile

	server.OnListen = announce(os.Stdout)

	addr := cfg.Address()
	tel.Logger.Info("starting",
		"addr", addr,
		"correct_mimes", cfg.CorrectMIMEs,
		"download", cfg.Download,
		"http3", cfg.HTTP3CertFile != "")

	return server.ListenAndServe(ctx, addr)
}

// announce prints the bound address once the listener is up.
func announce(w io.Writer) func(net.Addr) {
	return func(addr net.Addr) {
		fmt.Fprintf(w, "Serving at %s\n", color.GreenString(addr.String()))
	}
}
