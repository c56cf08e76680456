package chain

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playline/internal/domain/catalog"
	"github.com/osa030/playline/internal/domain/item"
)

// CatalogChain continues into an external ordered catalog once the
// explicit queue is exhausted: the queue is replaced with the catalog's
// remainder after the last played item, and wraps to the catalog start
// when the remainder is empty. It only gives up when the catalog itself
// is empty.
type CatalogChain struct {
	catalog catalog.Catalog
}

// NewCatalogChain creates a catalog chain over the given catalog.
func NewCatalogChain(c catalog.Catalog) *CatalogChain {
	return &CatalogChain{catalog: c}
}

// Name returns the policy name.
func (c *CatalogChain) Name() string { return "catalog" }

// Next advances within the queue, then chains into the catalog.
func (c *CatalogChain) Next(ctx context.Context, current int, items []item.Item) (Decision, bool) {
	if current+1 < len(items) {
		return Decision{Index: current + 1}, true
	}

	var lastID string
	if current >= 0 && current < len(items) {
		lastID = items[current].ID
	}

	rest, err := c.catalog.NextAfter(ctx, lastID)
	if err != nil {
		zlog.Warn().Err(err).Str("last_id", lastID).Msg("chain: catalog remainder lookup failed")
		rest = nil
	}
	if len(rest) == 0 {
		rest, err = c.catalog.FromStart(ctx)
		if err != nil {
			zlog.Warn().Err(err).Msg("chain: catalog rewind failed")
			return Decision{}, false
		}
	}
	if len(rest) == 0 {
		return Decision{}, false
	}
	return Decision{Index: 0, Replace: rest}, true
}

// OnFailure advances like Next.
func (c *CatalogChain) OnFailure(ctx context.Context, current int, items []item.Item) (Decision, bool) {
	return c.Next(ctx, current, items)
}
