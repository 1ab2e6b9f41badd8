package rates

import (
	"context"
	"time"

	"SJ_storefront_backend/internal/service"
	"SJ_storefront_backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const reconnectDelay = 10 * time.Second

type FeedConfig struct {
	Enabled bool
	URL     string
}

// Tick is one price update pushed by the upstream bullion feed.
type Tick struct {
	MetalType string          `json:"metal_type"`
	Purity    string          `json:"purity"`
	PriceINR  decimal.Decimal `json:"price_inr"`
}

// Feed subscribes to a websocket bullion feed and records each tick as the
// latest metal rate. Connection loss triggers a redial after a fixed delay.
type Feed struct {
	cfg     FeedConfig
	catalog service.CatalogServiceI
}

func NewFeed(cfg FeedConfig, catalog service.CatalogServiceI) *Feed {
	return &Feed{cfg: cfg, catalog: catalog}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (f *Feed) Run(ctx context.Context) {
	log := logger.Logger()

	if !f.cfg.Enabled || f.cfg.URL == "" {
		log.Info("rates feed disabled")
		return
	}

	for {
		if err := f.subscribe(ctx); err != nil {
			log.Warn("rates feed disconnected", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *Feed) subscribe(ctx context.Context) error {
	log := logger.Logger()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("rates feed connected", zap.String("url", f.cfg.URL))

	// The watcher must not outlive this subscription: done releases it when
	// the read loop exits on its own, otherwise it unblocks ReadMessage on
	// cancellation by closing the connection.
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var tick Tick
		if err := json.Unmarshal(p, &tick); err != nil {
			log.Warn("rates feed: malformed tick", zap.Error(err))
			continue
		}

		if _, err := f.catalog.RecordMetalRate(ctx, tick.MetalType, tick.Purity, tick.PriceINR); err != nil {
			log.Warn("rates feed: failed to record tick",
				zap.String("metal_type", tick.MetalType),
				zap.String("purity", tick.Purity),
				zap.Error(err))
			continue
		}

		log.Debug("rates feed: tick recorded",
			zap.String("metal_type", tick.MetalType),
			zap.String("purity", tick.Purity),
			zap.String("price_inr", tick.PriceINR.String()))
	}
}
