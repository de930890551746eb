// Package runner executes one offer run: resolve settings, search, rotate,
// compose, publish and record.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pet-offers-bot/classifier"
	"pet-offers-bot/composer"
	"pet-offers-bot/rotation"
	"pet-offers-bot/selector"
	"pet-offers-bot/settings"
	"pet-offers-bot/shopee"
	"pet-offers-bot/telegram"
)

const (
	MessageSent     = "Oferta enviada com sucesso"
	MessageNotFound = "Não foi encontrada nova oferta diferente na faixa de preço e categorias selecionadas."
)

// Store provides the ledger and the settings row.
type Store interface {
	IsPosted(ctx context.Context, itemID string) (bool, error)
	RecordPosted(ctx context.Context, itemID string, at time.Time) (bool, error)
	GetSettings(ctx context.Context, user string) (*settings.Settings, error)
}

// Publisher delivers a composed message.
type Publisher interface {
	Publish(ctx context.Context, text, imageURL string) (telegram.Delivery, error)
}

// TitleLookup finds a product name from the offer page.
type TitleLookup interface {
	Title(ctx context.Context, url string) (string, error)
}

// Rand picks an index in [0, n).
type Rand interface {
	IntN(n int) int
}

// Result reports a run to the trigger boundary.
type Result struct {
	RunID         string          `json:"runId"`
	Found         bool            `json:"found"`
	Message       string          `json:"message"`
	ItemID        string          `json:"itemId,omitempty"`
	CategoryID    int64           `json:"categoryId,omitempty"`
	StrategyUsed  int             `json:"strategyUsed,omitempty"`
	NextStrategy  int             `json:"nextStrategy"`
	TotalRequests int             `json:"totalRequests"`
	ProductKind   classifier.Kind `json:"productKind,omitempty"`

	BudgetExhausted bool              `json:"-"`
	Text            string            `json:"-"`
	Delivery        telegram.Delivery `json:"-"`
}

// Runner orchestrates a run. It holds no per-run state and is safe to share
// between the scheduler, the HTTP trigger and the bot.
type Runner struct {
	source     selector.OfferSource
	store      Store
	tracker    *rotation.Tracker
	publisher  Publisher
	blocker    *classifier.Classifier
	titles     TitleLookup
	categories []int64
	user       string
	rand       Rand
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCategories overrides the pet category catalog.
func WithCategories(ids []int64) Option {
	return func(r *Runner) {
		if len(ids) > 0 {
			r.categories = ids
		}
	}
}

// WithSettingsUser selects the settings row.
func WithSettingsUser(user string) Option {
	return func(r *Runner) {
		if user != "" {
			r.user = user
		}
	}
}

// WithBlocklist sets the keyword blocklist.
func WithBlocklist(c *classifier.Classifier) Option {
	return func(r *Runner) {
		r.blocker = c
	}
}

// WithTitleLookup sets the fallback used for offers without a product name.
func WithTitleLookup(t TitleLookup) Option {
	return func(r *Runner) {
		r.titles = t
	}
}

// WithRand sets the randomness used for category shuffling and templates.
func WithRand(rnd Rand) Option {
	return func(r *Runner) {
		r.rand = rnd
	}
}

// WithClock sets the clock used for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner. kv stores the rotation pointer.
func NewRunner(source selector.OfferSource, store Store, kv rotation.KV, publisher Publisher, opts ...Option) *Runner {
	r := &Runner{
		source:     source,
		store:      store,
		tracker:    rotation.NewTracker(kv),
		publisher:  publisher,
		blocker:    classifier.New(nil),
		categories: shopee.PetCategories,
		user:       settings.DefaultUser,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one invocation. Finding nothing is not an error. On error the
// returned Result still carries the run id and the request count.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	res := &Result{RunID: runID}

	eff := settings.Resolve(ctx, r.store, r.user)
	current := r.tracker.Current(ctx)
	log.Info("starting offer run",
		"current_sort_type", current,
		"sort_type_name", shopee.SortTypeName(current),
		"settings", eff)

	engineOpts := []selector.Option{selector.WithLogger(log)}
	if r.titles != nil {
		engineOpts = append(engineOpts, selector.WithTitleLookup(r.titles))
	}
	if r.rand != nil {
		engineOpts = append(engineOpts, selector.WithRand(r.rand))
	}
	engine := selector.NewEngine(r.source, r.store, r.blocker, engineOpts...)

	sel, err := engine.Select(ctx, eff, current, r.categories)
	if sel != nil {
		res.TotalRequests = sel.TotalRequests
		res.NextStrategy = sel.NextSortType
		res.BudgetExhausted = sel.BudgetExhausted
	}
	if err != nil {
		log.Error("offer search failed", "total_requests", res.TotalRequests, "error", err)
		return res, fmt.Errorf("search offers: %w", err)
	}

	if !sel.Found {
		res.Message = MessageNotFound
		r.tracker.SaveNext(ctx, sel.NextSortType)
		log.Info("offer run finished without a new offer",
			"total_requests", sel.TotalRequests,
			"next_sort_type", sel.NextSortType)
		return res, nil
	}

	// Rotation advances once a winner exists, whatever happens to delivery.
	r.tracker.SaveNext(ctx, sel.NextSortType)

	offer := sel.Offer
	name := offer.Name
	kind := classifier.ClassifyKind(name)

	text := composer.New(r.rand).Compose(composer.Input{
		Kind:         kind,
		ProductName:  name,
		PriceMin:     offer.PriceMin,
		PriceMax:     offer.PriceMax,
		DiscountRate: offer.DiscountRate,
		Link:         offer.Link,
	})
	log.Debug("message composed", "item_id", offer.ID, "product_kind", kind)

	delivery, err := r.publisher.Publish(ctx, text, offer.ImageURL)
	if err != nil {
		log.Error("failed to publish offer", "item_id", offer.ID, "error", err)
		return res, fmt.Errorf("publish offer %s: %w", offer.ID, err)
	}

	created, err := r.store.RecordPosted(ctx, offer.ID, r.now())
	switch {
	case err != nil:
		log.Warn("failed to record posted offer", "item_id", offer.ID, "error", err)
	case !created:
		log.Info("offer already recorded as posted", "item_id", offer.ID)
	}

	res.Found = true
	res.Message = MessageSent
	res.ItemID = offer.ID
	res.CategoryID = sel.CategoryID
	res.StrategyUsed = sel.SortType
	res.ProductKind = kind
	res.Text = text
	res.Delivery = delivery

	log.Info("offer run finished",
		"item_id", offer.ID,
		"category_id", sel.CategoryID,
		"sort_type", sel.SortType,
		"next_sort_type", sel.NextSortType,
		"total_requests", sel.TotalRequests,
		"product_kind", kind)
	return res, nil
}
