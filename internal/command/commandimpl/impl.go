package commandimpl

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/scheduled-post-manager/internal/command"
	"github.com/orgball2608/scheduled-post-manager/internal/poststore"
	"github.com/orgball2608/scheduled-post-manager/internal/ratelimit"
	"github.com/orgball2608/scheduled-post-manager/internal/scheduler"
	"github.com/orgball2608/scheduled-post-manager/internal/telegram"
	"github.com/orgball2608/scheduled-post-manager/pkg/config"
	"github.com/orgball2608/scheduled-post-manager/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

const commandTimeout = 30 * time.Second

type Opts struct {
	fx.In

	Telegram telegram.Client
	Store    poststore.Store
	Clock    scheduler.Clock
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config
}

type CommandImpl struct {
	Telegram telegram.Client
	Store    poststore.Store
	Clock    scheduler.Clock
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config

	location *time.Location
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram: opts.Telegram,
		Store:    opts.Store,
		Clock:    opts.Clock,
		Limiter:  opts.Limiter,
		Logger:   opts.Logger.WithComponent("Command"),
		Config:   opts.Config,
		location: opts.Config.Location(),
	}
}

var _ command.Client = (*CommandImpl)(nil)

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	workers := c.Config.Telegram.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("failed to create command pool: %w", err)
	}
	defer pool.Release()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.Telegram.GetUpdatesChan(u)

	c.Logger.Info("Listening for commands", "workers", workers)

	for {
		select {
		case <-ctx.Done():
			c.Telegram.StopReceivingUpdates()
			c.Logger.Info("Stopped listening for commands")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if err := pool.Submit(func() {
				c.handleUpdate(ctx, update)
			}); err != nil {
				c.Logger.Error("Failed to submit command to pool", "chatID", update.Message.Chat.ID, "error", err)
			}
		}
	}
}

func (c *CommandImpl) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}

	if ok, wait := c.Limiter.Allow(userID); !ok {
		c.reply(chatID, fmt.Sprintf("Too many commands, please wait %s.", wait.Round(time.Second)))
		return
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	c.Logger.Debug("Handling command", "command", msg.Command(), "chatID", chatID)

	switch msg.Command() {
	case "start", "help":
		c.reply(chatID, c.usage())
	case "schedule":
		c.reply(chatID, c.handleSchedule(cmdCtx, msg.CommandArguments()))
	case "timeline":
		c.reply(chatID, c.renderTimeline())
	case "pending":
		c.reply(chatID, c.renderPending())
	case "all":
		c.reply(chatID, c.renderAll())
	case "now":
		c.reply(chatID, c.renderNow())
	default:
		c.reply(chatID, "Unknown command. Send /help to see what I can do.")
	}
}

func (c *CommandImpl) reply(chatID int64, text string) {
	if _, err := c.Telegram.SendMessage(chatID, text); err != nil {
		c.Logger.Error("Failed to reply", "chatID", chatID, "error", err)
	}
}
