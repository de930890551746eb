package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 50

// Sort types accepted by productOfferV2.
const (
	SortRelevance      = 1
	SortItemSoldDesc   = 2
	SortPriceDesc      = 3
	SortPriceAsc       = 4
	SortCommissionDesc = 5
)

// SortTypeName returns a readable name for a sort type.
func SortTypeName(sortType int) string {
	switch sortType {
	case SortRelevance:
		return "RELEVANCE_DESC"
	case SortItemSoldDesc:
		return "ITEM_SOLD_DESC"
	case SortPriceDesc:
		return "PRICE_DESC"
	case SortPriceAsc:
		return "PRICE_ASC"
	case SortCommissionDesc:
		return "COMMISSION_DESC"
	default:
		return "UNKNOWN_" + strconv.Itoa(sortType)
	}
}

// ItemID is an offer identifier. The API sends it as a JSON number that may
// exceed the float64-safe range, so it is kept as its decimal text.
type ItemID string

// UnmarshalJSON accepts a JSON number, a string or null.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// Decimal is a number the API encodes as a string, sometimes with a comma
// decimal separator. Empty or unparsable values decode as 0.
type Decimal float64

// UnmarshalJSON accepts a JSON number, a string or null.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	*d = Decimal(ParsePrice(s))
	return nil
}

// ParsePrice converts a price string to a float, returning 0 when it cannot.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Offer is a productOfferV2 node.
type Offer struct {
	ItemID               ItemID   `json:"itemId"`
	ProductName          string   `json:"productName"`
	PriceMin             Decimal  `json:"priceMin"`
	PriceMax             Decimal  `json:"priceMax"`
	PriceDiscountRate    *float64 `json:"priceDiscountRate"`
	CommissionRate       Decimal  `json:"commissionRate"`
	SellerCommissionRate Decimal  `json:"sellerCommissionRate"`
	ShopeeCommissionRate Decimal  `json:"shopeeCommissionRate"`
	Commission           Decimal  `json:"commission"`
	ImageURL             string   `json:"imageUrl"`
	OfferLink            string   `json:"offerLink"`
	ProductLink          string   `json:"productLink"`
	ProductCatIDs        []int64  `json:"productCatIds"`
	ShopID               int64    `json:"shopId"`
	ShopName             string   `json:"shopName"`
	PeriodStartTime      int64    `json:"periodStartTime"`
	PeriodEndTime        int64    `json:"periodEndTime"`
}

// PageInfo describes the page returned.
type PageInfo struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
}

// Page is one page of offers.
type Page struct {
	Offers   []Offer
	PageInfo PageInfo
}

// Query selects a page of offers. A zero CategoryID searches every category.
type Query struct {
	CategoryID int64
	ListType   int
	SortType   int
	IsAMSOffer bool
	Limit      int
	Page       int
}

// normalized fills defaults and clamps the page size.
func (q Query) normalized() Query {
	if q.SortType == 0 {
		q.SortType = SortCommissionDesc
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

func buildQuery(q Query) string {
	filters := []string{
		"listType: " + strconv.Itoa(q.ListType),
		"sortType: " + strconv.Itoa(q.SortType),
		"limit: " + strconv.Itoa(q.Limit),
		"page: " + strconv.Itoa(q.Page),
		"isAMSOffer: " + strconv.FormatBool(q.IsAMSOffer),
	}
	if q.CategoryID != 0 {
		filters = append(filters, "productCatId: "+strconv.FormatInt(q.CategoryID, 10))
	}

	return `{
  productOfferV2(` + strings.Join(filters, ", ") + `) {
    nodes {
      itemId
      commissionRate
      sellerCommissionRate
      shopeeCommissionRate
      commission
      priceMin
      priceMax
      priceDiscountRate
      imageUrl
      offerLink
      productLink
      productName
      productCatIds
      shopId
      shopName
      periodStartTime
      periodEndTime
    }
    pageInfo {
      page
      limit
      hasNextPage
    }
  }
}`
}

// FetchOffers retrieves one page of offers.
func (c *Client) FetchOffers(ctx context.Context, q Query) (*Page, error) {
	q = q.normalized()

	var data struct {
		ProductOfferV2 *struct {
			Nodes    []Offer   `json:"nodes"`
			PageInfo *PageInfo `json:"pageInfo"`
		} `json:"productOfferV2"`
	}
	if err := c.do(ctx, buildQuery(q), &data); err != nil {
		return nil, fmt.Errorf("fetch offers (cat=%d sort=%d page=%d): %w", q.CategoryID, q.SortType, q.Page, err)
	}

	page := &Page{PageInfo: PageInfo{Page: 1, Limit: 20}}
	if data.ProductOfferV2 == nil {
		return page, nil
	}
	page.Offers = data.ProductOfferV2.Nodes
	if data.ProductOfferV2.PageInfo != nil {
		page.PageInfo = *data.ProductOfferV2.PageInfo
	}
	return page, nil
}
