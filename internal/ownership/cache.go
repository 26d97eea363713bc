package ownership

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/segminerals/ownerportal/pkg/models"
)

// Source supplies the raw well+ownership table.
type Source interface {
	OwnershipRows(ctx context.Context) ([]models.OwnershipRow, error)
}

const tableKey = "ownership_table"

// Cache is the process-wide read-through cache of the well+ownership
// table. The table changes on the warehouse's load cadence (days), so it
// is loaded once and reused across requests until explicitly refreshed —
// a deliberate staleness trade-off. Reads after population are
// concurrency-safe; the fill lock keeps a cold start from stampeding the
// warehouse.
type Cache struct {
	src   Source
	store *gocache.Cache

	fillMu sync.Mutex
}

// NewCache creates an empty ownership cache over the given source.
func NewCache(src Source) *Cache {
	return &Cache{
		src:   src,
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Rows returns the cached table, loading it from the warehouse on first
// use.
func (c *Cache) Rows(ctx context.Context) ([]models.OwnershipRow, error) {
	if rows, ok := c.store.Get(tableKey); ok {
		return rows.([]models.OwnershipRow), nil
	}

	c.fillMu.Lock()
	defer c.fillMu.Unlock()

	// Another request may have filled the table while we waited.
	if rows, ok := c.store.Get(tableKey); ok {
		return rows.([]models.OwnershipRow), nil
	}
	return c.load(ctx)
}

// Refresh reloads the table from the warehouse, replacing the cached
// copy. In-flight readers keep the old slice; the swap is atomic from
// their perspective.
func (c *Cache) Refresh(ctx context.Context) error {
	c.fillMu.Lock()
	defer c.fillMu.Unlock()
	_, err := c.load(ctx)
	return err
}

// Invalidate drops the cached table; the next read reloads it.
func (c *Cache) Invalidate() {
	c.store.Flush()
}

func (c *Cache) load(ctx context.Context) ([]models.OwnershipRow, error) {
	start := time.Now()
	rows, err := c.src.OwnershipRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ownership table: %w", err)
	}
	c.store.Set(tableKey, rows, gocache.NoExpiration)
	log.Printf("ownership table loaded: %d rows in %s", len(rows), time.Since(start).Round(time.Millisecond))
	return rows, nil
}

// Resolver answers owner → wells queries against the cached table.
type Resolver struct {
	cache *Cache
}

// NewResolver creates a resolver over the given cache.
func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// WellsForOwner resolves the owner's wells and net interests from the
// cached ownership table.
func (r *Resolver) WellsForOwner(ctx context.Context, owner string) ([]WellInterest, error) {
	rows, err := r.cache.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return WellsForOwner(rows, owner), nil
}
