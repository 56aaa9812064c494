package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	_ "github.com/nadzzz/dictado/docs"
	"github.com/nadzzz/dictado/internal/config"
	"github.com/nadzzz/dictado/internal/dispatch"
	"github.com/nadzzz/dictado/internal/health"
	"github.com/nadzzz/dictado/internal/processor"
	"github.com/nadzzz/dictado/internal/ratelimit"
	"github.com/nadzzz/dictado/internal/transcribe"
	"github.com/nadzzz/dictado/internal/transcribe/whisper"
	"github.com/nadzzz/dictado/internal/transcribe/wyoming"
	"github.com/nadzzz/dictado/internal/transport"
	grpctransport "github.com/nadzzz/dictado/internal/transport/grpc"
	httptransport "github.com/nadzzz/dictado/internal/transport/http"
)

func serveCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dictado daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			config.SetupLogging(cfg.Logging)
			return serve(cmd, cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	slog.Info("dictado starting", "version", version)

	proc, tr, err := newProcessor(cfg)
	if err != nil {
		return err
	}
	if tr != nil {
		defer tr.Close()
	}

	healthServer := health.New(cfg.Server.HealthPort)
	healthServer.SetComponent("processor", health.StatusOK)
	if tr != nil {
		healthServer.SetComponent("transcriber", health.StatusOK)
	} else {
		healthServer.SetComponent("transcriber", health.StatusNotAvailable)
	}

	// One limiter shared by every transport: a client's budget is global.
	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)

	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, httptransport.Options{
			AllowedOrigins: cfg.Transports.HTTP.AllowedOrigins,
			Limiter:        limiter,
			Info: httptransport.Info{
				Version:                processor.Version,
				TranscriptionAvailable: proc.TranscriptionAvailable(),
				SampleCommands:         processor.SampleCommands(),
				Vocabulary:             proc.Tables().Vocabulary(),
			},
		}))
	} else {
		healthServer.SetComponent("http", health.StatusDisabled)
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, limiter))
	} else {
		healthServer.SetComponent("grpc", health.StatusDisabled)
	}
	if len(transports) == 0 {
		return errors.New("no transports enabled; enable at least one in config")
	}

	dispatcher := dispatch.New(proc, cfg.Transcriber.Timeout)

	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		healthServer.SetComponent(t.Name(), health.StatusOK)
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				healthServer.SetComponent(t.Name(), health.StatusNotAvailable)
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("dictado ready",
		"transports", len(transports),
		"transcriber", cfg.Transcriber.Backend,
		"health_port", cfg.Server.HealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("dictado stopped")
	return nil
}

// newProcessor builds the pipeline and, when configured, its transcriber.
func newProcessor(cfg *config.Config) (*processor.Processor, transcribe.Transcriber, error) {
	tr, err := newTranscriber(cfg.Transcriber)
	if err != nil {
		return nil, nil, err
	}

	opts := []processor.Option{
		processor.WithLocation(cfg.Location()),
		processor.WithCurrency(cfg.Processor.Currency),
		processor.WithLanguage(cfg.Processor.Language),
	}
	if tr != nil {
		opts = append(opts, processor.WithTranscriber(tr))
	}

	proc, err := processor.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("building processor: %w", err)
	}
	return proc, tr, nil
}

func newTranscriber(cfg config.TranscriberConfig) (transcribe.Transcriber, error) {
	switch cfg.Backend {
	case "", "none":
		slog.Info("no transcriber configured, audio commands will be rejected")
		return nil, nil
	case "whisper":
		slog.Info("using whisper transcriber", "endpoint", cfg.Whisper.Endpoint, "type", cfg.Whisper.Type)
		return whisper.New(cfg.Whisper, nil), nil
	case "wyoming":
		slog.Info("using wyoming transcriber", "endpoint", cfg.Wyoming.Endpoint)
		return wyoming.New(cfg.Wyoming), nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend %q", cfg.Backend)
	}
}
