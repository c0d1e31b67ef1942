package tg_publish

// Delivery of rendered charts to a Telegram chat
// Every send waits on the rate limiter, runs behind the circuit breaker and is
// retried on 429/5xx with full-jitter backoff

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"strategy-charts/internal/features/charts"
	"strategy-charts/internal/infra/log"
	"strategy-charts/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	RatePerSecond float64
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	// BreakerFailures consecutive failed sends open the breaker.
	BreakerFailures uint32
}

func DefaultOptions() Options {
	return Options{
		RatePerSecond:   1,
		MaxRetries:      3,
		BaseDelay:       500 * time.Millisecond,
		MaxDelay:        30 * time.Second,
		BreakerFailures: 5,
	}
}

type Publisher struct {
	sender  Sender
	chatID  int64
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   retry.Options
}

func NewPublisher(sender Sender, chatID int64, opts Options) *Publisher {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	failures := opts.BreakerFailures

	return &Publisher{
		sender:  sender,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "TelegramSend",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
		retry: retry.Options{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  opts.BaseDelay,
			MaxDelay:   opts.MaxDelay,
		},
	}
}

// Caption formats the HTML photo caption for an image.
func Caption(title, description string) string {
	return "<b>" + html.EscapeString(title) + "</b>\n" + html.EscapeString(description)
}

// Publish sends the charts in order. A failed chart does not stop the others
// unless the breaker is open; all failures are returned joined.
func (p *Publisher) Publish(ctx context.Context, list []charts.Chart) error {
	start := time.Now()
	var errs []error
	sent := 0

	for _, c := range list {
		err := p.sendChart(ctx, c)
		if err == nil {
			sent++
			continue
		}
		errs = append(errs, fmt.Errorf("send %s: %w", c.Name, err))
		if errors.Is(err, gobreaker.ErrOpenState) || ctx.Err() != nil {
			log.LogError("Chart delivery aborted", zap.String("chart", c.Name), zap.Error(err))
			break
		}
		log.LogWarn("Chart delivery failed", zap.String("chart", c.Name), zap.Error(err))
	}

	if len(errs) == 0 {
		log.LogSuccess("Charts published",
			zap.Int64("chat_id", p.chatID),
			zap.Int("count", sent),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	}
	return errors.Join(errs...)
}

func (p *Publisher) sendChart(ctx context.Context, c charts.Chart) error {
	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: c.Name + ".png", Bytes: c.PNG})
	photo.Caption = Caption(c.Title, c.Description)
	photo.ParseMode = tgbotapi.ModeHTML

	return retry.Do(ctx, p.retry, func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		_, err := p.breaker.Execute(func() (interface{}, error) {
			_, err := p.sender.Send(photo)
			return nil, classify(err)
		})
		if err != nil {
			log.LogDebug("Telegram send attempt failed", zap.String("chart", c.Name), zap.Error(err))
		}
		return err
	})
}

// classify turns Telegram API errors into retry.APIError so the retry policy can see the code.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var te *tgbotapi.Error
	if errors.As(err, &te) {
		return &retry.APIError{
			Code:       te.Code,
			Message:    te.Message,
			RetryAfter: time.Duration(te.RetryAfter) * time.Second,
		}
	}
	return err
}
