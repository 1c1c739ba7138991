package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/web3-frozen/goldwatch/internal/monitor"
)

const telegramAPI = "https://api.telegram.org/bot"

// SnapshotFunc returns the latest published price snapshot, nil before the
// first accepted reading.
type SnapshotFunc func() *monitor.Snapshot

// Bot sends price alerts and answers a small command set over Telegram long
// polling. Subscribed chats live in memory; a chat re-subscribes with
// /start after a restart.
type Bot struct {
	token    string
	logger   *slog.Logger
	client   *http.Client
	snapshot SnapshotFunc
	offset   int64

	mu    sync.RWMutex
	chats map[int64]struct{}
}

func NewBot(token string, snapshot SnapshotFunc, logger *slog.Logger) *Bot {
	return &Bot{
		token:    token,
		logger:   logger,
		client:   &http.Client{Timeout: 35 * time.Second},
		snapshot: snapshot,
		chats:    make(map[int64]struct{}),
	}
}

// Subscribers returns the chat IDs currently subscribed to alerts.
func (b *Bot) Subscribers() []int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]int64, 0, len(b.chats))
	for id := range b.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SendMessage sends a text message to a Telegram chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, _ := json.Marshal(payload)

	resp, err := b.client.Post(
		telegramAPI+b.token+"/sendMessage",
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("telegram API error %d: %s", resp.StatusCode, errResp.Description)
	}
	return nil
}

// Run starts the long-polling loop for incoming Telegram messages.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.poll(ctx)
		}
	}
}

func (b *Bot) poll(ctx context.Context) {
	url := fmt.Sprintf("%s%s/getUpdates?offset=%d&timeout=30", telegramAPI, b.token, b.offset)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		b.logger.Error("create poll request", "error", err)
		return
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("poll updates", "error", err)
		time.Sleep(5 * time.Second)
		return
	}
	defer resp.Body.Close()

	var result struct {
		OK     bool `json:"ok"`
		Result []struct {
			UpdateID int64 `json:"update_id"`
			Message  *struct {
				Chat struct {
					ID int64 `json:"id"`
				} `json:"chat"`
				Text string `json:"text"`
			} `json:"message"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		b.logger.Error("decode updates", "error", err)
		return
	}

	for _, u := range result.Result {
		b.offset = u.UpdateID + 1
		if u.Message == nil {
			continue
		}

		chatID := u.Message.Chat.ID
		switch strings.TrimSpace(u.Message.Text) {
		case "/start":
			b.handleStart(chatID)
		case "/stop":
			b.handleStop(chatID)
		case "/price":
			b.handlePrice(chatID)
		case "/help":
			b.handleHelp(chatID)
		default:
			_ = b.SendMessage(chatID, "Unknown command. Send /help for available commands.")
		}
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.mu.Lock()
	b.chats[chatID] = struct{}{}
	b.mu.Unlock()
	b.logger.Info("chat subscribed", "chat_id", chatID)
	_ = b.SendMessage(chatID, "👋 Subscribed to Au99.99 price alerts.\n\n"+
		"You'll be notified when the price leaves the configured band.\n"+
		"Send /price for the current quote, /stop to unsubscribe.")
}

func (b *Bot) handleStop(chatID int64) {
	b.mu.Lock()
	delete(b.chats, chatID)
	b.mu.Unlock()
	b.logger.Info("chat unsubscribed", "chat_id", chatID)
	_ = b.SendMessage(chatID, "Unsubscribed. Send /start to subscribe again.")
}

func (b *Bot) handlePrice(chatID int64) {
	snap := b.snapshot()
	if snap == nil {
		_ = b.SendMessage(chatID, "No price data yet, try again shortly.")
		return
	}
	msg := fmt.Sprintf("🪙 <b>Au99.99</b>: %.2f CNY/g\n"+
		"Change vs prev close: %+.2f (%+.2f%%)\n"+
		"Source: %s",
		snap.Latest.Price, snap.Latest.Change, snap.Latest.ChangePercent,
		snap.ActiveSource)
	_ = b.SendMessage(chatID, msg)
}

func (b *Bot) handleHelp(chatID int64) {
	_ = b.SendMessage(chatID, "🤖 <b>Goldwatch Bot</b>\n\n"+
		"Commands:\n"+
		"/start — Subscribe to price alerts\n"+
		"/stop — Unsubscribe\n"+
		"/price — Current Au99.99 quote\n"+
		"/help — Show this message")
}
