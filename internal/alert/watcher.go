// Package alert turns accepted readings into threshold notifications and
// trading-calendar notices.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/web3-frozen/goldwatch/internal/calendar"
	"github.com/web3-frozen/goldwatch/internal/dedup"
	"github.com/web3-frozen/goldwatch/internal/metrics"
	"github.com/web3-frozen/goldwatch/internal/monitor"
	"github.com/web3-frozen/goldwatch/internal/settings"
)

// SendFunc delivers a message to one chat.
type SendFunc func(chatID int64, message string) error

// SubscribersFunc lists the chats to notify.
type SubscribersFunc func() []int64

// dedupTTL caps how long a fired band edge stays suppressed even if the
// price never returns inside the band. eventTTL covers calendar notices,
// which are one-shot per date and never cleared.
const (
	dedupTTL = 6 * time.Hour
	eventTTL = 14 * 24 * time.Hour
)

// Watcher compares each accepted reading against the operator's alert band
// and notifies subscribers when the price crosses out of it. Each band edge
// fires once per excursion: the dedup key is recorded on crossing and
// cleared once the price is back inside. When a calendar is attached it also
// announces exchange closures, gated by the trading-events setting.
type Watcher struct {
	settings    *settings.Store
	dedup       *dedup.Deduplicator
	calendar    *calendar.Calendar
	send        SendFunc
	subscribers SubscribersFunc
	logger      *slog.Logger
}

func NewWatcher(st *settings.Store, dd *dedup.Deduplicator, cal *calendar.Calendar, send SendFunc, subs SubscribersFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		settings:    st,
		dedup:       dd,
		calendar:    cal,
		send:        send,
		subscribers: subs,
		logger:      logger,
	}
}

// Observe is called by the poller for every accepted reading.
func (w *Watcher) Observe(ctx context.Context, r monitor.Reading) {
	w.observeBand(ctx, r)
	w.observeTradingEvents(ctx, r.Timestamp)
}

func (w *Watcher) observeBand(ctx context.Context, r monitor.Reading) {
	band := w.settings.Band()
	if !band.Enabled {
		return
	}

	if band.High > 0 {
		key := fmt.Sprintf("goldwatch:alert:high:%.2f", band.High)
		if r.Price >= band.High {
			w.fire(ctx, key, "high", fmt.Sprintf(
				"📈 <b>Au99.99 above %.2f</b>\n\nCurrent: %.2f CNY/g (source: %s)",
				band.High, r.Price, r.Source), dedupTTL)
		} else {
			w.clear(ctx, key)
		}
	}

	if band.Low > 0 {
		key := fmt.Sprintf("goldwatch:alert:low:%.2f", band.Low)
		if r.Price <= band.Low {
			w.fire(ctx, key, "low", fmt.Sprintf(
				"📉 <b>Au99.99 below %.2f</b>\n\nCurrent: %.2f CNY/g (source: %s)",
				band.Low, r.Price, r.Source), dedupTTL)
		} else {
			w.clear(ctx, key)
		}
	}
}

// observeTradingEvents announces exchange closures: once on the eve of a
// holiday and once when a closure begins. Providers keep serving the last
// session's price through a closure, so readings still arrive to drive this.
func (w *Watcher) observeTradingEvents(ctx context.Context, now time.Time) {
	if w.calendar == nil || !w.settings.TradingEvents() {
		return
	}

	if hol, ok := w.calendar.HolidayOn(now); ok {
		key := "goldwatch:event:close:" + hol.Dates[0]
		w.fire(ctx, key, "event", fmt.Sprintf(
			"🏮 <b>SGE closed: %s</b>\n\nTrading resumes on %s.",
			hol.Name, hol.FirstTradingDay), eventTTL)
		return
	}

	if hol, days, ok := w.calendar.NextHoliday(now); ok && days == 1 {
		key := "goldwatch:event:eve:" + hol.Dates[0]
		w.fire(ctx, key, "event", fmt.Sprintf(
			"🏮 <b>Last trading day before %s</b>\n\nSGE closes %s through %s, reopens %s.",
			hol.Name, hol.Dates[0], hol.Dates[len(hol.Dates)-1], hol.FirstTradingDay), eventTTL)
	}
}

func (w *Watcher) fire(ctx context.Context, key, kind, msg string, ttl time.Duration) {
	if w.dedup != nil && w.dedup.AlreadySent(ctx, key) {
		metrics.AlertsDeduplicatedTotal.WithLabelValues(kind).Inc()
		return
	}

	for _, chatID := range w.subscribers() {
		if err := w.send(chatID, msg); err != nil {
			w.logger.Error("send alert failed", "chat_id", chatID, "error", err)
			metrics.AlertsFailedTotal.WithLabelValues(kind).Inc()
			continue
		}
		metrics.AlertsSentTotal.WithLabelValues(kind).Inc()
	}

	if w.dedup != nil {
		w.dedup.Record(ctx, key, ttl)
	}
}

func (w *Watcher) clear(ctx context.Context, key string) {
	if w.dedup != nil {
		w.dedup.Clear(ctx, key)
	}
}
