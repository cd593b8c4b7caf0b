/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var inMemory bool

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the notekeep API server",
	Long: `Starts the notekeep API server. Usage:

	notekeep server
	notekeep server --in-memory
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)

		opts := []server.Option{server.WithLogger(log)}
		if inMemory {
			opts = append(opts, server.WithInMemoryStore())
		}

		srv, err := server.New(cmd.Context(), cfg, opts...)
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			log.Info(context.Background(), "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().BoolVar(&inMemory, "in-memory", false, "Keep users and notes in memory instead of Postgres")
}
