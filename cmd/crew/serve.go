package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewline/crewline/internal/audit"
	"github.com/crewline/crewline/internal/config"
	"github.com/crewline/crewline/internal/docstore"
	"github.com/crewline/crewline/internal/notify"
	"github.com/crewline/crewline/internal/notify/discord"
	"github.com/crewline/crewline/internal/notify/slack"
	"github.com/crewline/crewline/internal/reminder"
	"github.com/crewline/crewline/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Crewline API server",
		Long:  "Launches the REST API together with the stale-stage reminder sweeper.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "crewline.yaml", "path to Crewline config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default: config server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := connectDB(cfg)
	if err != nil {
		return err
	}

	store, err := docstore.NewLocal(cfg.Files.Dir)
	if err != nil {
		return err
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return err
	}
	for _, a := range adapters {
		fmt.Fprintf(out, "Notification adapter enabled: %s\n", a.Name())
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	dispatcher := notify.NewDispatcher(gormDB, adapters...)
	sweeper := reminder.NewSweeper(gormDB, dispatcher, time.Duration(cfg.Reminders.StaleAfter)*time.Hour)
	go func() {
		if err := sweeper.Run(ctx, cfg.Reminders.Schedule); err != nil && ctx.Err() == nil {
			log.Printf("reminder: %v", err)
		}
	}()

	return server.Start(ctx, server.StartOpts{
		Deps: server.Deps{
			DB:         gormDB,
			Dispatcher: dispatcher,
			Recorder:   audit.NewRecorder(gormDB),
			Store:      store,
		},
		Port: port,
		Out:  out,
	})
}

// buildAdapters creates the notification adapters the config enables.
func buildAdapters(cfg *config.Config) ([]notify.Adapter, error) {
	var adapters []notify.Adapter

	if cfg.Notify.Slack.WebhookURL != "" {
		a, err := slack.New(slack.AdapterOpts{WebhookURL: cfg.Notify.Slack.WebhookURL})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	if cfg.Notify.Discord.Token != "" {
		a, err := discord.New(discord.AdapterOpts{
			BotToken:  cfg.Notify.Discord.Token,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	return adapters, nil
}
