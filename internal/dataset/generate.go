package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/spboyer/loadout/internal/models"
)

// GenerateOptions controls Generate. Zero values select the defaults noted on
// each field.
type GenerateOptions struct {
	Items     int     // default 20
	MaxWeight int     // default 50, weights are integers in [1, MaxWeight]
	MaxProfit int     // default 100, profits are integers in [1, MaxProfit]
	Trucks    int     // default 1
	Fill      float64 // capacity as a fraction of total weight, default 0.5
	MaxItems  int     // pallet limit per truck, 0 means unlimited
	Seed      uint64
}

func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.Items <= 0 {
		o.Items = 20
	}
	if o.MaxWeight <= 0 {
		o.MaxWeight = 50
	}
	if o.MaxProfit <= 0 {
		o.MaxProfit = 100
	}
	if o.Trucks <= 0 {
		o.Trucks = 1
	}
	if o.Fill <= 0 {
		o.Fill = 0.5
	}
	return o
}

// Generate returns a reproducible random dataset. The same options always
// yield the same items and trucks. Trucks get increasing fill fractions
// around opts.Fill so a multi-truck file covers tight and loose instances.
func Generate(opts GenerateOptions) ([]models.Item, []models.Container) {
	opts = opts.withDefaults()
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	items := make([]models.Item, opts.Items)
	total := 0.0
	for i := range items {
		w := float64(1 + r.IntN(opts.MaxWeight))
		p := float64(1 + r.IntN(opts.MaxProfit))
		items[i] = models.NewItem(i+1, w, p)
		total += w
	}

	containers := make([]models.Container, opts.Trucks)
	for i := range containers {
		fill := opts.Fill
		if opts.Trucks > 1 {
			fill = opts.Fill * (0.5 + float64(i)/float64(opts.Trucks-1))
		}
		c := models.Container{ID: i + 1, Capacity: math.Round(total * fill)}
		if opts.MaxItems > 0 {
			k := opts.MaxItems
			c.MaxItems = &k
		}
		containers[i] = c
	}
	return items, containers
}
