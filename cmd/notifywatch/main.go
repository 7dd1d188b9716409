package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"lunch-order/internal/domain"
	"lunch-order/internal/syncclient"
)

// notifywatch follows a user's notifications from the terminal.
func main() {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOTIFYWATCH")
	v.AutomaticEnv()
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("TOKEN", "")
	v.SetDefault("POLL_INTERVAL", syncclient.DefaultPollInterval)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	token := v.GetString("TOKEN")
	if token == "" {
		logger.Error("NOTIFYWATCH_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := syncclient.New(syncclient.Config{
		BaseURL:      v.GetString("BASE_URL"),
		AccessToken:  token,
		PollInterval: v.GetDuration("POLL_INTERVAL"),
		OnUpdate:     render,
	}, logger)

	if err := client.Run(ctx); err != nil {
		logger.Error("sync stopped", "error", err)
		os.Exit(1)
	}
}

func render(items []domain.Notification) {
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}

	fmt.Printf("\n%d notifications, %d unread\n", len(items), unread)
	for _, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Printf("%s %s  %-18s %s\n", mark, n.CreatedAt.Local().Format(time.DateTime), n.Category, n.Message)
	}
}
