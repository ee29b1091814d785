package billing

import "math"

// Package is a static catalog entry. Packages live in code, never in the
// database, and are looked up by ID at checkout and reconcile time.
type Package struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	DurationDays int     `json:"duration_days"`
}

// PriceMinorUnits returns the price in the currency's minor units, which
// is what the payment gateway expects.
func (p Package) PriceMinorUnits() int64 {
	return int64(math.Round(p.Price * 100))
}

type Catalog struct {
	packages map[string]Package
	order    []string
}

func NewCatalog(packages ...Package) *Catalog {
	c := &Catalog{packages: make(map[string]Package, len(packages))}
	for _, p := range packages {
		if _, exists := c.packages[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.packages[p.ID] = p
	}
	return c
}

// DefaultCatalog returns the packages sold in production.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Package{
			ID:           "basic",
			Name:         "Basic Plan",
			Price:        19.99,
			Currency:     "sgd",
			DurationDays: 30,
		},
		Package{
			ID:           "premium",
			Name:         "Premium Plan",
			Price:        39.99,
			Currency:     "sgd",
			DurationDays: 30,
		},
	)
}

func (c *Catalog) Get(id string) (Package, bool) {
	p, ok := c.packages[id]
	return p, ok
}

// List returns the packages in their declaration order.
func (c *Catalog) List() []Package {
	out := make([]Package, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.packages[id])
	}
	return out
}
