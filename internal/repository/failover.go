package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSearchCache переключается на резервный кэш при отказе основного
// и раз в минуту пробует вернуться на основной.
type FailoverSearchCache struct {
	primary  domain.SearchCache
	fallback domain.SearchCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// UnixNano последней неудачной проверки; читается конкурентно с markDown.
	lastCheck atomic.Int64
}

func NewFailoverSearchCache(primary, fallback domain.SearchCache, logger *zerolog.Logger) *FailoverSearchCache {
	return &FailoverSearchCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverSearchCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary search cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}

func (c *FailoverSearchCache) GetSearch(ctx context.Context, text string) ([]*models.Item, bool, error) {
	if !c.isDown.Load() {
		items, ok, err := c.primary.GetSearch(ctx, text)
		if err == nil {
			return items, ok, nil
		}
		c.markDown(err)
	}

	// Try to recover after 1 minute
	if c.isDown.Load() && time.Since(time.Unix(0, c.lastCheck.Load())) > time.Minute {
		items, ok, err := c.primary.GetSearch(ctx, text)
		if err == nil {
			c.isDown.Store(false)
			return items, ok, nil
		}
		c.lastCheck.Store(time.Now().UnixNano())
	}

	return c.fallback.GetSearch(ctx, text)
}

func (c *FailoverSearchCache) SetSearch(ctx context.Context, text string, items []*models.Item) error {
	if !c.isDown.Load() {
		err := c.primary.SetSearch(ctx, text, items)
		if err == nil {
			return nil
		}
		c.markDown(err)
	}

	return c.fallback.SetSearch(ctx, text, items)
}

func (c *FailoverSearchCache) InvalidateSearch(ctx context.Context) error {
	if !c.isDown.Load() {
		err := c.primary.InvalidateSearch(ctx)
		if err == nil {
			// Сбрасываем и резервный, чтобы не отдать устаревший поиск после отказа.
			return c.fallback.InvalidateSearch(ctx)
		}
		c.markDown(err)
	}

	return c.fallback.InvalidateSearch(ctx)
}
