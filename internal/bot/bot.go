package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"hubcoin/internal/logger"
	"hubcoin/internal/notify"
	"hubcoin/internal/repository"
	"hubcoin/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const handlerTimeout = 30 * time.Second

// sender is the part of tgbotapi.BotAPI the command handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot serves /start and the admin commands over long polling and delivers
// queued notifications.
type Bot struct {
	client      *tgbotapi.BotAPI
	api         sender
	accounts    *service.AccountService
	leaderboard *service.LeaderboardService
	withdrawals repository.WithdrawalStore
	frontendURL string
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	log         *slog.Logger
}

// New authorizes token and returns a bot ready to Start
func New(token string, accounts *service.AccountService, leaderboard *service.LeaderboardService,
	withdrawals repository.WithdrawalStore, frontendURL string) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	b := newBot(client, accounts, leaderboard, withdrawals, frontendURL)
	b.client = client
	b.log.Info("bot authorized", "username", client.Self.UserName)
	return b, nil
}

func newBot(api sender, accounts *service.AccountService, leaderboard *service.LeaderboardService,
	withdrawals repository.WithdrawalStore, frontendURL string) *Bot {
	return &Bot{
		api:         api,
		accounts:    accounts,
		leaderboard: leaderboard,
		withdrawals: withdrawals,
		frontendURL: frontendURL,
		stopCh:      make(chan struct{}),
		log:         logger.With("component", "bot"),
	}
}

// Start runs the update loop until Stop is called
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.client.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() || update.Message.From == nil {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop ends the update loop and waits for in-flight handlers
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.log.Info("stopping bot...")
		close(b.stopCh)
		if b.client != nil {
			b.client.StopReceivingUpdates()
		}
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	ctx = logger.NewContext(ctx, "tg_id", msg.From.ID, "command", msg.Command())

	defer func() {
		if r := recover(); r != nil {
			logger.WithContext(ctx).Error("command handler panicked", "panic", r)
		}
	}()

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "updateleaderboard":
		b.handleUpdateLeaderboard(ctx, msg)
	case "withdrawals":
		b.handleWithdrawals(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := msg.From
	userID := strconv.FormatInt(user.ID, 10)
	username := user.UserName
	if username == "" {
		username = user.FirstName
	}

	var referrer string
	if args := strings.Fields(msg.CommandArguments()); len(args) > 0 {
		referrer = args[0]
	}

	_, created, err := b.accounts.CreateOrFetch(ctx, service.AccountRequest{
		UserID:      userID,
		Username:    username,
		DisplayName: user.FirstName,
		ReferrerID:  referrer,
	})
	if err != nil {
		// still greet; the mini-app creates the account on first open
		logger.WithContext(ctx).Error("start: create account failed", "error", err)
	} else if created {
		logger.WithContext(ctx).Info("start: new user", "referrer", referrer)
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID,
		fmt.Sprintf("👋 Welcome, %s! Click the button below to start earning.", mentionHTML(user)))
	reply.ParseMode = tgbotapi.ModeHTML
	if b.frontendURL != "" {
		reply.ReplyMarkup = webAppKeyboard("🚀 Open HubCoin Miner", b.frontendURL)
	}
	b.send(ctx, reply)
}

// tgbotapi v5.5.1 predates web_app buttons. The mini-app needs one: Telegram
// only passes initData (and so the user id) to pages opened as a WebApp.
type webAppInfo struct {
	URL string `json:"url"`
}

type webAppButton struct {
	Text   string     `json:"text"`
	WebApp webAppInfo `json:"web_app"`
}

type inlineWebAppMarkup struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

func webAppKeyboard(text, url string) inlineWebAppMarkup {
	return inlineWebAppMarkup{
		InlineKeyboard: [][]webAppButton{{{Text: text, WebApp: webAppInfo{URL: url}}}},
	}
}

func (b *Bot) handleUpdateLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	if !b.leaderboard.IsAdmin(msg.From.ID) {
		b.reply(ctx, msg, "⛔ You are not authorized.")
		return
	}
	b.reply(ctx, msg, "⏳ Updating leaderboard...")

	n, err := b.leaderboard.Refresh(ctx, msg.From.ID)
	if err != nil {
		b.reply(ctx, msg, "❌ Failed to update leaderboard.")
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("✅ Leaderboard updated with %d players!", n))
}

// handleWithdrawals lists a user's latest payout requests for manual review
func (b *Bot) handleWithdrawals(ctx context.Context, msg *tgbotapi.Message) {
	if !b.leaderboard.IsAdmin(msg.From.ID) {
		b.reply(ctx, msg, "⛔ You are not authorized.")
		return
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.reply(ctx, msg, "Usage: /withdrawals <user_id>")
		return
	}

	list, err := b.withdrawals.ListWithdrawals(ctx, args[0], 10)
	if err != nil {
		logger.WithContext(ctx).Error("list withdrawals failed", "error", err)
		b.reply(ctx, msg, "❌ Failed to load withdrawals.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, msg, "No withdrawal requests for "+args[0]+".")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Withdrawals for %s</b>\n\n", html.EscapeString(args[0]))
	for _, w := range list {
		fmt.Fprintf(&sb, "%s  %s TK via %s → <code>%s</code> [%s]\n",
			w.SubmittedAt.UTC().Format("2006-01-02 15:04"),
			w.Amount.StringFixed(2),
			html.EscapeString(w.Method),
			html.EscapeString(w.Account),
			w.Status,
		)
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, sb.String())
	reply.ParseMode = tgbotapi.ModeHTML
	b.send(ctx, reply)
}

// SendNotification delivers a queued plain-text message
func (b *Bot) SendNotification(_ context.Context, n notify.Notification) error {
	_, err := b.api.Send(tgbotapi.NewMessage(n.ChatID, n.Text))
	return err
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.MessageConfig) {
	if _, err := b.api.Send(c); err != nil {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) {
			logger.WithContext(ctx).Warn("telegram rejected message", "chat_id", c.ChatID, "code", tgErr.Code, "error", tgErr.Message)
			return
		}
		logger.WithContext(ctx).Error("failed to send message", "chat_id", c.ChatID, "error", err)
	}
}

func mentionHTML(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}
