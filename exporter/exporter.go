// Package exporter drives one product export: it loads the storefront page,
// checks that it belongs to a Shopify store, runs the retrieval strategies for
// the requested mode until one yields products and encodes them as CSV.
package exporter

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/models"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/base"
	"github.com/raushankrgupta/shopify-product-exporter/scrapers/shopify"
	"github.com/raushankrgupta/shopify-product-exporter/shopifycsv"
	"github.com/raushankrgupta/shopify-product-exporter/storefront"
	log "github.com/sirupsen/logrus"
)

// Terminal failures, with the messages shown to users.
var (
	ErrNotStorefront   = shopify.ErrNotStorefront
	ErrNoProductsFound = shopify.ErrNoProductsFound
	ErrUnparseable     = shopify.ErrUnparseable
)

// PageLoader loads the page an export starts from.
type PageLoader interface {
	Load(ctx context.Context, url string) (*base.Page, error)
}

// StrategyFunc builds the ordered strategy chain for a mode.
type StrategyFunc func(mode scrapers.Mode, client *storefront.Client, rules *config.SelectorRules) []scrapers.Strategy

// Request describes one export.
type Request struct {
	ID     string
	URL    string
	Mode   scrapers.Mode
	Schema *shopifycsv.Schema
}

// Result is a finished export.
type Result struct {
	ID       string
	Products []models.Product
	Strategy string
	CSV      string
	Filename string
}

// Exporter runs exports. It holds no per-run state and may be shared.
type Exporter struct {
	Loader     PageLoader
	HTTP       *http.Client
	Rules      *config.SelectorRules
	UserAgent  string
	Strategies StrategyFunc
	Now        func() time.Time
}

// New creates an Exporter whose page loads and JSON requests share client.
func New(client *http.Client, rules *config.SelectorRules) *Exporter {
	if client == nil {
		client = base.NewHTTPClient()
	}
	if rules == nil {
		rules = config.DefaultSelectorRules()
	}
	return &Exporter{
		Loader:     base.NewPageLoader(client),
		HTTP:       client,
		Rules:      rules,
		UserAgent:  config.UserAgent,
		Strategies: scrapers.GetStrategies,
		Now:        time.Now,
	}
}

// Run performs the export described by req. Progress is reported on events
// without ever blocking, then exactly one complete or error event is sent.
// events may be nil; Run never closes it.
func (e *Exporter) Run(ctx context.Context, req Request, events chan<- Event) (*Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Schema == nil {
		req.Schema = shopifycsv.Legacy
	}
	emit := &emitter{ctx: ctx, events: events}
	logger := log.WithFields(log.Fields{"run": req.ID, "url": req.URL, "mode": req.Mode})

	result, err := e.run(ctx, req, emit, logger)
	if err != nil {
		logger.WithError(err).Warn("Export failed")
		emit.terminal(Event{Type: EventError, Error: err.Error()})
		return nil, err
	}

	logger.WithFields(log.Fields{"count": len(result.Products), "strategy": result.Strategy}).Info("Export complete")
	emit.terminal(Event{
		Type:     EventComplete,
		Count:    len(result.Products),
		Filename: result.Filename,
		CSV:      result.CSV,
		Products: result.Products,
	})
	return result, nil
}

func (e *Exporter) run(ctx context.Context, req Request, emit *emitter, logger *log.Entry) (*Result, error) {
	page, err := e.Loader.Load(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if !shopify.IsStorefront(page.Doc, e.Rules.StorefrontMarkers) {
		return nil, ErrNotStorefront
	}

	client, err := storefront.NewClient(page.StoreURL(), e.HTTP)
	if err != nil {
		return nil, err
	}
	client.UserAgent = e.UserAgent

	products, strategy, err := e.retrieve(ctx, page, e.Strategies(req.Mode, client, e.Rules), emit, logger)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:       req.ID,
		Products: products,
		Strategy: strategy,
		CSV:      shopifycsv.NewEncoder(req.Schema).Encode(products),
		Filename: shopifycsv.Filename(e.now()),
	}, nil
}

// retrieve tries each strategy in turn until one returns products. A strategy
// that fails or finds nothing hands over to the next one; only the last
// failure is reported.
func (e *Exporter) retrieve(ctx context.Context, page *base.Page, chain []scrapers.Strategy, emit *emitter, logger *log.Entry) ([]models.Product, string, error) {
	var lastErr error
	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		products, err := s.Retrieve(ctx, page, emit.progress)
		if err == nil && len(products) > 0 {
			return products, s.Name(), nil
		}

		entry := logger.WithField("strategy", s.Name())
		if err != nil {
			entry.WithError(err).Info("Strategy failed, trying next")
			lastErr = err
		} else {
			entry.Info("Strategy found no products, trying next")
		}
	}

	if lastErr == nil {
		lastErr = ErrNoProductsFound
	}
	return nil, "", lastErr
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
