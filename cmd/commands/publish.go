package commands

// Publish command
// Same pipeline as render, then every chart goes to the configured Telegram chat

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategy-charts/internal/features/tg_publish"
	"strategy-charts/internal/infra/config"
	logging "strategy-charts/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSender connects to the Bot API; replaced in tests.
var newSender = func(token string, timeout time.Duration) (tg_publish.Sender, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	return bot, nil
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render charts, print them as JSON and send them to Telegram",
		Args:  cobra.NoArgs,
		RunE:  runPublish,
	}
	cmd.Flags().String("chat-id", "", "target chat id (overrides TELEGRAM_CHAT_ID)")
	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	if err := cfg.ValidatePublish(); err != nil {
		logging.LogError("Invalid publish configuration", zap.Error(err))
		return fmt.Errorf("invalid publish configuration: %w", err)
	}
	chatID, _ := cfg.ChatID()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res := generateCharts(ctx, cmd, cfg)
	if err := writeResult(cmd, res); err != nil {
		return err
	}
	if len(res.Charts) == 0 {
		logging.LogInfo("No charts to publish")
		return nil
	}

	sender, err := newSender(cfg.Telegram.BotToken, cfg.Telegram.Timeout)
	if err != nil {
		logging.LogError("Failed to create Telegram bot", zap.Error(err))
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	publisher := tg_publish.NewPublisher(sender, chatID, publisherOptions(cfg))
	if err := publisher.Publish(ctx, res.Charts); err != nil {
		return fmt.Errorf("failed to publish charts: %w", err)
	}
	return nil
}

func publisherOptions(cfg *config.Config) tg_publish.Options {
	opts := tg_publish.DefaultOptions()
	opts.RatePerSecond = cfg.Telegram.RatePerSecond
	opts.MaxRetries = cfg.Telegram.MaxRetries
	return opts
}
