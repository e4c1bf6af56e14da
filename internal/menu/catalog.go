// Package menu provides the dish catalog.
package menu

import (
	"sort"
	"sync"

	"github.com/fondita/mesaboard/internal/domain"
	"github.com/fondita/mesaboard/internal/logger"
)

// DefaultPrepMinutes is assumed for dish names the catalog does not know.
// The backend occasionally reports names outside the menu; rather than
// failing the whole estimate, unknown dishes get this flat time. See
// DESIGN.md — this masks upstream data bugs and is kept on purpose.
const DefaultPrepMinutes = 15

// Compile-time interface check.
var _ domain.MenuCatalog = (*Catalog)(nil)

// Catalog holds the menu in memory. Immutable after construction, safe for
// concurrent reads.
type Catalog struct {
	mu     sync.RWMutex
	dishes map[string]domain.Dish
	log    *logger.Logger
}

// NewCatalog creates a catalog preloaded with the house menu.
func NewCatalog(log *logger.Logger) *Catalog {
	c := &Catalog{
		dishes: make(map[string]domain.Dish),
		log:    log,
	}
	c.seed()
	return c
}

// Dishes returns the full menu sorted by name.
func (c *Catalog) Dishes() []domain.Dish {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Dish, 0, len(c.dishes))
	for _, d := range c.dishes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the dish for an exact, case-sensitive name match.
func (c *Catalog) Lookup(name string) (domain.Dish, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.dishes[name]
	return d, ok
}

// PriceOf returns the unit price for a dish name, or 0 for unknown names.
func (c *Catalog) PriceOf(name string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.dishes[name]
	if !ok {
		c.log.Debug("price lookup for unknown dish %q, using 0", name)
		return 0
	}
	return d.Price
}

// PrepMinutesOf returns the base preparation minutes for a dish name, or
// DefaultPrepMinutes for unknown names.
func (c *Catalog) PrepMinutesOf(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.dishes[name]
	if !ok {
		c.log.Debug("prep-time lookup for unknown dish %q, using default %d", name, DefaultPrepMinutes)
		return DefaultPrepMinutes
	}
	return d.PrepMinutes
}

// seed populates the catalog with the house menu. Prices and prep times
// match what the kitchen quotes on the printed menu.
func (c *Catalog) seed() {
	dishes := []domain.Dish{
		{Name: "Tacos al pastor", Price: 7.50, PrepMinutes: 12},
		{Name: "Enchiladas verdes", Price: 5.50, PrepMinutes: 18},
		{Name: "Pozole", Price: 5.70, PrepMinutes: 22},
		{Name: "Tamales", Price: 6.50, PrepMinutes: 8},
	}
	for _, d := range dishes {
		c.dishes[d.Name] = d
	}
	c.log.Debug("seeded %d dishes", len(dishes))
}
