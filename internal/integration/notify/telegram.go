package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"go.uber.org/zap"
)

// Notifier announces terminal job states to an external channel.
type Notifier interface {
	JobCompleted(ctx context.Context, job *entity.BacklogJob, itemCount int)
	JobFailed(ctx context.Context, job *entity.BacklogJob, jobErr error)
}

// TelegramNotifier posts job outcomes into a configured chat. Delivery is
// best-effort: failures are logged, never returned.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger.Info("telegram notifier ready", zap.String("bot", bot.Self.UserName))

	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) JobCompleted(ctx context.Context, job *entity.BacklogJob, itemCount int) {
	text := fmt.Sprintf(
		"✅ Backlog job %s finished\nDomain: %s\nProvider: %s\nWork items: %d",
		job.ID, job.Domain, job.Provider, itemCount,
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) JobFailed(ctx context.Context, job *entity.BacklogJob, jobErr error) {
	text := fmt.Sprintf(
		"❌ Backlog job %s failed\nDomain: %s\nProvider: %s\nError: %v",
		job.ID, job.Domain, job.Provider, jobErr,
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		ctxzap.Warn(ctx, "telegram notification failed", zap.Error(err))
	}
}

// NoopNotifier is used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) JobCompleted(context.Context, *entity.BacklogJob, int) {}
func (NoopNotifier) JobFailed(context.Context, *entity.BacklogJob, error) {}
