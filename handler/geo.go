package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oullin/profilesync/handler/payload"
	"github.com/oullin/profilesync/pkg/address"
	"github.com/oullin/profilesync/pkg/cache"
	"github.com/oullin/profilesync/pkg/portal"
)

const DefaultCatalogTTL = 30 * time.Minute

const occupationsResource = "occupations"

// Geo serves the read-only taxonomy (provinces, cities, districts) and the
// occupation catalog, cached per locale and filter. Every loaded entry is
// remembered so locally built addresses can be titled without a request.
type Geo struct {
	client *portal.Client
	locale string
	ttl    time.Duration
	cache  *cache.TTLCache[[]payload.CatalogItem]

	mu     sync.RWMutex
	titles map[string]map[int]string
}

func MakeGeo(client *portal.Client, locale string, ttl time.Duration) *Geo {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}

	return &Geo{
		client: client,
		locale: locale,
		ttl:    ttl,
		cache:  cache.NewTTLCache[[]payload.CatalogItem](),
		titles: make(map[string]map[int]string),
	}
}

func (g *Geo) Provinces(ctx context.Context) ([]payload.CatalogItem, error) {
	return g.catalog(ctx, address.Province.Resource(), "", 0)
}

func (g *Geo) Cities(ctx context.Context, provinceID int) ([]payload.CatalogItem, error) {
	return g.catalog(ctx, address.City.Resource(), "province", provinceID)
}

func (g *Geo) Districts(ctx context.Context, cityID int) ([]payload.CatalogItem, error) {
	return g.catalog(ctx, address.District.Resource(), "city", cityID)
}

func (g *Geo) Occupations(ctx context.Context) ([]payload.CatalogItem, error) {
	return g.catalog(ctx, occupationsResource, "", 0)
}

// OccupationTitles maps occupation ids to their titles.
func (g *Geo) OccupationTitles(ctx context.Context) (map[int]string, error) {
	items, err := g.Occupations(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[int]string, len(items))
	for _, item := range items {
		out[item.ID] = item.Title
	}

	return out, nil
}

// Title returns the title of an already loaded taxonomy entry.
func (g *Geo) Title(level address.Level, id int) string {
	return g.lookup(level.Resource(), id)
}

func (g *Geo) OccupationTitle(id int) string {
	return g.lookup(occupationsResource, id)
}

func (g *Geo) lookup(resource string, id int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.titles[resource][id]
}

func (g *Geo) catalog(ctx context.Context, resource, filter string, filterID int) ([]payload.CatalogItem, error) {
	key := strings.Join([]string{resource, g.locale, filter, strconv.Itoa(filterID)}, "|")

	return g.cache.GetOrLoad(ctx, key, g.ttl, func(ctx context.Context) ([]payload.CatalogItem, error) {
		var opts []portal.Option

		if g.locale != "" {
			opts = append(opts, portal.WithQuery(portal.LocaleQueryKey, g.locale))
		}

		if filter != "" && filterID > 0 {
			opts = append(opts, portal.WithQuery(filter, strconv.Itoa(filterID)))
		}

		var collection payload.Collection[payload.CatalogItem]
		if err := g.client.GetJSON(ctx, "/api/"+resource, &collection, opts...); err != nil {
			return nil, fmt.Errorf("load %s catalog: %w", resource, err)
		}

		g.remember(resource, collection.Items)

		return collection.Items, nil
	})
}

func (g *Geo) remember(resource string, items []payload.CatalogItem) {
	g.mu.Lock()
	defer g.mu.Unlock()

	titles := g.titles[resource]
	if titles == nil {
		titles = make(map[int]string, len(items))
		g.titles[resource] = titles
	}

	for _, item := range items {
		titles[item.ID] = item.Title
	}
}
