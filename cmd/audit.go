/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notekeep/apiserver/config"
	"github.com/notekeep/apiserver/internal/mq"
	"github.com/notekeep/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect authentication events",
}

var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log auth events from the configured message bus until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := newLogger(cfg)
		ctx := cmd.Context()

		backend, err := mq.NewBackend(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect mq: %w", err)
		}
		if backend == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		bus := mq.NewBus(backend, cfg.MQ.AuthEventsChannel)
		defer bus.Close()

		log.Info(ctx, "tailing auth events", "backend", cfg.MQ.Backend, "channel", bus.Channel())
		err = bus.Subscribe(ctx, func(ctx context.Context, msg mq.Message) error {
			var event services.AuthEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				log.Warn(ctx, "skipping undecodable event", "id", msg.ID, "error", err)
				return nil
			}
			log.Info(ctx, "auth event",
				"type", event.Type,
				"user_id", event.UserID,
				"email", event.Email,
				"reason", event.Reason,
				"at", event.At,
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTailCmd)
}
