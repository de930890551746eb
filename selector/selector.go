// Package selector searches the offer catalog for one new, qualifying offer.
//
// The search walks sort types (outer), shuffled categories (middle) and pages
// (inner) serially. A global request budget is checked before every page
// fetch, and the first offer passing the dedup, price and keyword filters
// ends the whole search.
package selector

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"

	"pet-offers-bot/rotation"
	"pet-offers-bot/settings"
)

const (
	// MaxPagesPerCategory is the page ceiling the catalog enforces.
	MaxPagesPerCategory = 50
	maxSortAttempts     = 4
)

// Offer is a catalog offer as seen by the engine.
type Offer struct {
	ID             string
	Name           string
	PriceMin       float64
	PriceMax       float64
	DiscountRate   *float64
	CommissionRate float64
	Link           string
	ImageURL       string
	CategoryIDs    []int64
}

// EffectivePrice is PriceMin when positive, otherwise PriceMax.
func (o Offer) EffectivePrice() float64 {
	if o.PriceMin > 0 {
		return o.PriceMin
	}
	return o.PriceMax
}

// Page is one page of offers from the source.
type Page struct {
	Offers      []Offer
	HasNextPage bool
}

// OfferSource fetches a page of offers for a category and sort type.
type OfferSource interface {
	FetchOffers(ctx context.Context, categoryID int64, sortType, page, pageSize int) (*Page, error)
}

// Ledger answers whether an offer was already posted.
type Ledger interface {
	IsPosted(ctx context.Context, itemID string) (bool, error)
}

// Blocker reports the blocked keyword contained in a product name.
type Blocker interface {
	Blocked(name string) (string, bool)
}

// TitleLookup finds a product name on the offer page.
type TitleLookup interface {
	Title(ctx context.Context, url string) (string, error)
}

// Rand picks an index in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Selection is the outcome of one search.
type Selection struct {
	Found           bool
	Offer           *Offer
	CategoryID      int64
	SortType        int
	Sequence        []int
	NextSortType    int
	TotalRequests   int
	BudgetExhausted bool
}

// Engine runs searches.
type Engine struct {
	source  OfferSource
	ledger  Ledger
	blocker Blocker
	titles  TitleLookup
	rand    Rand
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the randomness used to shuffle categories.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithTitleLookup resolves names for offers that arrive without one. The
// resolved name is what the blocklist checks and what the winner carries.
func WithTitleLookup(t TitleLookup) Option {
	return func(e *Engine) {
		e.titles = t
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine creates an Engine.
func NewEngine(source OfferSource, ledger Ledger, blocker Blocker, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		ledger:  ledger,
		blocker: blocker,
		rand:    globalRand{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select searches for the first qualifying offer starting from the current
// sort type. Exhausting the search is not an error: the returned Selection
// has Found false. A source failure aborts the search; the partial Selection
// (with its request count) is returned together with the error.
func (e *Engine) Select(ctx context.Context, s settings.Effective, current int, categories []int64) (*Selection, error) {
	seq := rotation.Sequence(current)
	attempts := min(maxSortAttempts, len(seq))
	cats := e.shuffle(categories)
	maxPages := min(s.MaxPagesPerRun, MaxPagesPerCategory)
	budget := s.MaxPagesPerRun

	if s.MaxPagesPerRun > MaxPagesPerCategory {
		e.log.Warn("max pages per run exceeds catalog page limit",
			"max_pages_per_run", s.MaxPagesPerRun, "page_limit", MaxPagesPerCategory)
	}

	sel := &Selection{Sequence: seq, SortType: current}

	e.log.Info("starting offer search",
		"sort_sequence", seq,
		"categories", len(cats),
		"budget", budget,
		"min_price", s.MinPrice,
		"max_price", s.MaxPrice)

search:
	for _, sortType := range seq[:attempts] {
		if sel.TotalRequests >= budget {
			sel.BudgetExhausted = true
			break
		}
		e.log.Debug("trying sort type", "sort_type", sortType)

		for _, categoryID := range cats {
			for page := 1; page <= maxPages; page++ {
				if sel.TotalRequests >= budget {
					e.log.Info("request budget exhausted", "total_requests", sel.TotalRequests)
					sel.BudgetExhausted = true
					break search
				}

				p, err := e.source.FetchOffers(ctx, categoryID, sortType, page, s.ItemsPerPage)
				sel.TotalRequests++
				if err != nil {
					sel.NextSortType = rotation.NextAfter(seq, sel.SortType)
					return sel, err
				}

				e.log.Debug("fetched page",
					"category_id", categoryID,
					"sort_type", sortType,
					"page", page,
					"offers", len(p.Offers),
					"total_requests", sel.TotalRequests)

				if len(p.Offers) == 0 {
					break
				}

				if offer := e.firstQualifying(ctx, p.Offers, s); offer != nil {
					sel.Found = true
					sel.Offer = offer
					sel.CategoryID = categoryID
					sel.SortType = sortType
					break search
				}

				if !p.HasNextPage {
					break
				}
			}
		}

		e.log.Debug("no new offer for sort type", "sort_type", sortType)
	}

	sel.NextSortType = rotation.NextAfter(seq, sel.SortType)

	if sel.Found {
		e.log.Info("offer selected",
			"item_id", sel.Offer.ID,
			"category_id", sel.CategoryID,
			"sort_type", sel.SortType,
			"total_requests", sel.TotalRequests)
	} else {
		e.log.Info("no new offer found",
			"total_requests", sel.TotalRequests,
			"budget_exhausted", sel.BudgetExhausted)
	}
	return sel, nil
}

// firstQualifying applies the filters in order: identifier, dedup ledger,
// price range, keyword blocklist. The blocklist sees the resolved name.
func (e *Engine) firstQualifying(ctx context.Context, offers []Offer, s settings.Effective) *Offer {
	for _, o := range offers {
		id := strings.TrimSpace(o.ID)
		if id == "" {
			e.log.Warn("offer without a valid id, skipping", "product_name", o.Name)
			continue
		}

		posted, err := e.ledger.IsPosted(ctx, id)
		if err != nil {
			e.log.Warn("dedup lookup failed, skipping offer", "item_id", id, "error", err)
			continue
		}
		if posted {
			e.log.Debug("offer already posted", "item_id", id)
			continue
		}

		price := o.EffectivePrice()
		if price < s.MinPrice || price > s.MaxPrice {
			e.log.Debug("offer outside price range", "item_id", id, "price", price)
			continue
		}

		name := e.productName(ctx, o, id)
		if kw, blocked := e.blocker.Blocked(name); blocked {
			e.log.Debug("offer blocked by keyword", "item_id", id, "keyword", kw)
			continue
		}

		winner := o
		winner.ID = id
		winner.Name = name
		return &winner
	}
	return nil
}

func (e *Engine) productName(ctx context.Context, o Offer, id string) string {
	name := strings.TrimSpace(o.Name)
	if name != "" || e.titles == nil || o.Link == "" {
		return name
	}
	title, err := e.titles.Title(ctx, o.Link)
	if err != nil {
		e.log.Warn("offer page title lookup failed", "item_id", id, "error", err)
		return ""
	}
	return strings.TrimSpace(title)
}

// shuffle returns a uniformly permuted copy of categories.
func (e *Engine) shuffle(categories []int64) []int64 {
	out := make([]int64, len(categories))
	copy(out, categories)
	for i := len(out) - 1; i > 0; i-- {
		j := e.rand.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
