package catalog

import (
	"time"

	"github.com/jmbondo/kitanda-backend/internal/modules/pricing"
)

// ProductType distinguishes plain products from variable parents and
// their materialized variations.
type ProductType string

const (
	TypeSimple    ProductType = "simple"
	TypeVariable  ProductType = "variable"
	TypeVariation ProductType = "variation"
)

// StockStatus mirrors the upstream commerce platform's flag.
type StockStatus string

const (
	StockInStock    StockStatus = "instock"
	StockOutOfStock StockStatus = "outofstock"
)

// Image is a product image reference from the external catalog.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	URL string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// Attribute describes one axis of a variable product (e.g. size -> S/M/L).
type Attribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Product is one externally-synced catalog entry. Variations of a
// variable product are expanded into independent Product rows with
// Type == TypeVariation, a synthesized display name and ParentID set.
type Product struct {
	ID           int64       `json:"id"`
	ParentID     int64       `json:"parent_id,omitempty"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Type         ProductType `json:"type"`
	RegularPrice string      `json:"regular_price,omitempty"`
	StockStatus  StockStatus `json:"stock_status"`
	CategoryIDs  []int64     `json:"category_ids,omitempty"`
	Images       []Image     `json:"images,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	// SelectedAttributes holds the concrete option per attribute for a
	// specific variation (empty for simple/variable products).
	SelectedAttributes map[string]string `json:"selected_attributes,omitempty"`
}

// Pagination describes one page of catalog results.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// Page is a raw, pre-pricing catalog page. This is the only shape the
// cache layer ever sees: no user, tier or discount data goes in.
type Page struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Query is the filter set for a catalog page. The cache key is a pure
// function of these four fields and nothing else.
type Query struct {
	CategoryID string
	Page       int
	PerPage    int
	Search     string
}

// PricedProduct is a catalog product resolved for one specific caller.
type PricedProduct struct {
	Product
	pricing.ResolvedPrice
}

// PricedPage is the API response shape for the browse endpoint.
type PricedPage struct {
	Data       []PricedProduct `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// MirrorProduct is a row of the local read copy of the synced catalog.
type MirrorProduct struct {
	SKU         string      `json:"sku"`
	ExternalID  int64       `json:"external_id"`
	Name        string      `json:"name"`
	Type        ProductType `json:"type"`
	StockStatus StockStatus `json:"stock_status"`
	SyncedAt    time.Time   `json:"synced_at"`
}
