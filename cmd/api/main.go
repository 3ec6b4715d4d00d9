package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/paperdeck/paperdeck/internal/app"
	"github.com/paperdeck/paperdeck/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:   "paperdeck",
		Short: "Document ingestion and retrieval-augmented chat service",
	}

	var pretty bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and analysis workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pretty {
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			}
			return runServe()
		},
	}
	serve.Flags().BoolVar(&pretty, "pretty", false, "human-readable log output")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	application.Analyzer.Start(ctx, cfg.Workers)

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	application.Analyzer.Wait()
	return nil
}
