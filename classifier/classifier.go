// Package classifier maps product names to coarse kinds and decides whether
// an offer is blocked by keyword.
package classifier

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind is the coarse product category used to pick message templates.
type Kind string

const (
	KindFood      Kind = "FOOD"
	KindSnack     Kind = "SNACK"
	KindToy       Kind = "TOY"
	KindHygiene   Kind = "HYGIENE"
	KindAccessory Kind = "ACCESSORY"
	KindGeneric   Kind = "GENERIC"
)

// Kinds lists every kind in classification order, GENERIC last.
var Kinds = []Kind{KindFood, KindSnack, KindToy, KindHygiene, KindAccessory, KindGeneric}

type kindRule struct {
	kind     Kind
	keywords []string
}

// Order matters: the first rule with a matching keyword wins.
var kindRules = []kindRule{
	{KindFood, []string{
		"ração", "raçao", "alimento completo", "alimento úmido", "alimento umido",
		"ração úmida", "ração umida", "sachê", "sache", "pedigree", "whiskas",
		"golden", "premier",
	}},
	{KindSnack, []string{
		"petisco", "bifinho", "snack", "biscuits", "biscoito", "ossinho", "stick",
	}},
	{KindToy, []string{
		"brinquedo", "bola", "bolinha", "mordedor", "pelúcia", "pelucia", "frisbee", "varinha",
		"catnip", "arranhador", "laser",
	}},
	{KindHygiene, []string{
		"tapete higiênico", "tapete higienico", "banho", "shampoo", "condicionador",
		"areia higiênica", "areia higienica", "cata coco", "cata-coco", "higiênico",
		"higienico", "saquinho", "sacola", "refil",
	}},
	{KindAccessory, []string{
		"coleira", "peitoral", "guia", "cama", "casinha", "comedouro", "bebedouro",
		"roupa", "camiseta", "pote", "tigela", "fonte", "cortador de unha", "escova",
	}},
}

// DefaultBlocklist holds terms for animals the channel does not cover.
var DefaultBlocklist = []string{
	"feno",
	"coast cross",
	"lagomorfos",
	"coelhos",
	"coelho",
	"porquinho da índia",
	"porquinho da india",
	"pássaro",
	"pássaros",
	"passaro",
	"passaros",
	"calopsita",
	"periquito",
	"papagaio",
	"canário",
	"canario",
	"ave",
	"aves",
}

// normalize folds a name into the form the keyword lists are written in.
// Names from the catalog sometimes arrive decomposed (NFD), which would
// otherwise miss accented keywords.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// ClassifyKind returns the kind of the first keyword list matching name.
// An empty name is GENERIC.
func ClassifyKind(name string) Kind {
	if name == "" {
		return KindGeneric
	}
	n := normalize(name)
	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(n, kw) {
				return rule.kind
			}
		}
	}
	return KindGeneric
}

// Classifier holds a blocklist. The zero value blocks nothing.
type Classifier struct {
	blocklist []string
}

// New returns a Classifier using DefaultBlocklist plus extra entries.
func New(extra []string) *Classifier {
	list := make([]string, 0, len(DefaultBlocklist)+len(extra))
	for _, kw := range append(append([]string{}, DefaultBlocklist...), extra...) {
		kw = normalize(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		list = append(list, kw)
	}
	return &Classifier{blocklist: list}
}

// Blocked reports the first blocklist entry contained in name, if any.
func (c *Classifier) Blocked(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	n := normalize(name)
	for _, kw := range c.blocklist {
		if strings.Contains(n, kw) {
			return kw, true
		}
	}
	return "", false
}

// IsBlocked reports whether name contains an entry of the blocklist.
func (c *Classifier) IsBlocked(name string) bool {
	_, ok := c.Blocked(name)
	return ok
}

var defaultClassifier = New(nil)

// IsBlocked checks name against DefaultBlocklist.
func IsBlocked(name string) bool {
	return defaultClassifier.IsBlocked(name)
}
