// Package composer builds the promotional text posted for a selected offer.
package composer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"pet-offers-bot/classifier"
)

const (
	fallbackName = "Oferta Shopee"
	fallbackLink = "https://shopee.com.br"
	noPriceText  = "Preço indisponível"
)

// Rand picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Input carries the offer fields a message is built from.
type Input struct {
	Kind         classifier.Kind
	ProductName  string
	PriceMin     float64
	PriceMax     float64
	DiscountRate *float64
	Link         string
}

// Composer renders messages. Each call draws fresh template picks.
type Composer struct {
	rand Rand
}

// New creates a Composer. A nil r uses the process-wide source.
func New(r Rand) *Composer {
	if r == nil {
		r = globalRand{}
	}
	return &Composer{rand: r}
}

// Compose renders the message in Telegram legacy Markdown.
func (c *Composer) Compose(in Input) string {
	name := sanitizeMarkdown(strings.TrimSpace(in.ProductName))
	if name == "" {
		name = fallbackName
	}
	link := strings.TrimSpace(in.Link)
	if link == "" {
		link = fallbackLink
	}

	effMin := in.PriceMin
	if effMin <= 0 {
		effMin = in.PriceMax
	}
	effMax := in.PriceMax
	if effMax <= 0 {
		effMax = in.PriceMin
	}

	priceBlock := noPriceText
	if effMin > 0 {
		priceBlock = PriceText(effMin, effMax, in.DiscountRate)
	}

	opening := c.pick(templatesFor(openingByKind, in.Kind))
	cta := c.pick(templatesFor(ctaByKind, in.Kind))
	urgency := c.pick(urgencyLines)

	return fmt.Sprintf("%s\n\n*✨ %s*\n\n%s\n\n%s\n%s\n\n%s",
		opening, name, priceBlock, cta, link, urgency)
}

// PriceText renders the price block. When max is above min the message shows
// both prices, otherwise a single "now only" line.
func PriceText(priceMin, priceMax float64, discountRate *float64) string {
	minStr := formatBRL(priceMin)
	maxStr := formatBRL(priceMax)

	discount := ""
	if discountRate != nil && !math.IsNaN(*discountRate) && *discountRate > 0 {
		discount = strconv.FormatFloat(math.Round(*discountRate), 'f', 0, 64) + "% OFF"
	}

	if priceMax > priceMin && priceMax > 0 {
		text := fmt.Sprintf("💸 *De:* %s\n💥 *Por:* %s", maxStr, minStr)
		if discount != "" {
			text += fmt.Sprintf("  (_%s_)", discount)
		}
		return text
	}

	return fmt.Sprintf("💥 *Por apenas:* %s", minStr)
}

func formatBRL(v float64) string {
	return "R$ " + strconv.FormatFloat(v, 'f', 2, 64)
}

func templatesFor(table map[classifier.Kind][]string, kind classifier.Kind) []string {
	if list, ok := table[kind]; ok && len(list) > 0 {
		return list
	}
	return table[classifier.KindGeneric]
}

func (c *Composer) pick(list []string) string {
	return list[c.rand.IntN(len(list))]
}

// Legacy Markdown has no escapes inside an entity, and the name is rendered
// inside a bold one.
var markdownReplacer = strings.NewReplacer("*", "", "_", " ", "`", "'", "[", "(", "]", ")")

func sanitizeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}
