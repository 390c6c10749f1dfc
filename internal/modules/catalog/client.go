package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client fetches products from the external commerce platform's REST
// API. It never applies pricing; it returns raw catalog pages.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	http           *http.Client
	logger         *zap.Logger
}

// NewClient builds a catalog client. The http timeout bounds every
// upstream call; the browse path degrades gracefully on failure.
func NewClient(baseURL, consumerKey, consumerSecret string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		http:           &http.Client{Timeout: 15 * time.Second},
		logger:         logger,
	}
}

// ── Wire types ────────────────────────────────────────────────────────────────

type wireProduct struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Type         string          `json:"type"`
	RegularPrice string          `json:"regular_price"`
	StockStatus  string          `json:"stock_status"`
	Categories   []wireCategory  `json:"categories"`
	Images       []Image         `json:"images"`
	Attributes   []wireAttribute `json:"attributes"`
}

type wireCategory struct {
	ID int64 `json:"id"`
}

type wireAttribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type wireVariation struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	RegularPrice string `json:"regular_price"`
	StockStatus  string `json:"stock_status"`
	Image        *Image `json:"image"`
	Images       []Image `json:"images"`
	Attributes   []struct {
		Name   string `json:"name"`
		Option string `json:"option"`
	} `json:"attributes"`
}

// ── Fetch ─────────────────────────────────────────────────────────────────────

// FetchPage returns one page of products for the given filters, with
// every variable product replaced by its flattened variations.
//
// With a search term two upstream queries are issued: a free-text
// search and an exact-SKU lookup, merged de-duplicated by product id
// with the free-text matches first. Pagination totals come from the
// free-text response headers when present.
func (c *Client) FetchPage(ctx context.Context, q Query) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	if q.CategoryID != "" {
		params.Set("category", q.CategoryID)
	}

	var merged []wireProduct
	var pagination Pagination

	if q.Search != "" {
		searchParams := cloneValues(params)
		searchParams.Set("search", q.Search)
		byText, headers, err := c.fetchProducts(ctx, searchParams)
		if err != nil {
			return nil, err
		}

		skuParams := url.Values{}
		skuParams.Set("sku", q.Search)
		bySKU, _, err := c.fetchProducts(ctx, skuParams)
		if err != nil {
			return nil, err
		}

		merged = mergeByID(byText, bySKU)
		pagination = paginationFrom(headers, q, len(merged))
	} else {
		products, headers, err := c.fetchProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		merged = products
		pagination = paginationFrom(headers, q, len(products))
	}

	flat := make([]Product, 0, len(merged))
	for _, wp := range merged {
		p := toProduct(wp)
		if p.Type != TypeVariable {
			flat = append(flat, p)
			continue
		}
		variations, err := c.fetchVariations(ctx, wp.ID)
		if err != nil {
			return nil, err
		}
		flat = append(flat, flattenVariations(p, variations)...)
	}

	return &Page{Products: flat, Pagination: pagination}, nil
}

func (c *Client) fetchProducts(ctx context.Context, params url.Values) ([]wireProduct, http.Header, error) {
	var products []wireProduct
	headers, err := c.get(ctx, "/products", params, &products)
	if err != nil {
		return nil, nil, err
	}
	return products, headers, nil
}

// fetchVariations pages through every variation of a variable product;
// a full page means another may follow.
func (c *Client) fetchVariations(ctx context.Context, parentID int64) ([]wireVariation, error) {
	const perPage = 100
	var all []wireVariation
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		var batch []wireVariation
		if _, err := c.get(ctx, fmt.Sprintf("/products/%d/variations", parentID), params, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) (http.Header, error) {
	params.Set("consumer_key", c.consumerKey)
	params.Set("consumer_secret", c.consumerSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("catalog request %s: decoding body: %w", path, err)
	}
	return resp.Header, nil
}

// ── Merge & flatten ───────────────────────────────────────────────────────────

// mergeByID keeps the free-text matches in order and appends SKU
// matches not already present.
func mergeByID(byText, bySKU []wireProduct) []wireProduct {
	seen := make(map[int64]bool, len(byText))
	merged := make([]wireProduct, 0, len(byText)+len(bySKU))
	for _, p := range byText {
		seen[p.ID] = true
		merged = append(merged, p)
	}
	for _, p := range bySKU {
		if !seen[p.ID] {
			merged = append(merged, p)
		}
	}
	return merged
}

// flattenVariations materializes each variation of a variable product
// as an independent Product. Field precedence per flattened entry:
//   - name: "<parent> - <attr>: <option>, ..." when the variation has
//     selected attributes, else the parent name verbatim
//   - sku, price, stock status: variation's own, parent's when blank
//   - images: variation image, else the variation's images[0], else the
//     parent image array
func flattenVariations(parent Product, variations []wireVariation) []Product {
	out := make([]Product, 0, len(variations))
	for _, v := range variations {
		p := Product{
			ID:           v.ID,
			ParentID:     parent.ID,
			Type:         TypeVariation,
			Name:         parent.Name,
			SKU:          v.SKU,
			RegularPrice: v.RegularPrice,
			StockStatus:  StockStatus(v.StockStatus),
			CategoryIDs:  parent.CategoryIDs,
		}

		if len(v.Attributes) > 0 {
			selected := make(map[string]string, len(v.Attributes))
			parts := make([]string, 0, len(v.Attributes))
			for _, a := range v.Attributes {
				selected[a.Name] = a.Option
				parts = append(parts, fmt.Sprintf("%s: %s", a.Name, a.Option))
			}
			p.SelectedAttributes = selected
			p.Name = parent.Name + " - " + strings.Join(parts, ", ")
		}

		if p.SKU == "" {
			p.SKU = parent.SKU
		}
		if p.RegularPrice == "" {
			p.RegularPrice = parent.RegularPrice
		}
		if p.StockStatus == "" {
			p.StockStatus = parent.StockStatus
		}

		switch {
		case v.Image != nil && v.Image.URL != "":
			p.Images = []Image{*v.Image}
		case len(v.Images) > 0:
			p.Images = v.Images[:1]
		default:
			p.Images = parent.Images
		}

		out = append(out, p)
	}
	return out
}

func toProduct(wp wireProduct) Product {
	p := Product{
		ID:           wp.ID,
		SKU:          wp.SKU,
		Name:         wp.Name,
		Type:         ProductType(wp.Type),
		RegularPrice: wp.RegularPrice,
		StockStatus:  StockStatus(wp.StockStatus),
		Images:       wp.Images,
	}
	for _, c := range wp.Categories {
		p.CategoryIDs = append(p.CategoryIDs, c.ID)
	}
	for _, a := range wp.Attributes {
		p.Attributes = append(p.Attributes, Attribute{Name: a.Name, Options: a.Options})
	}
	return p
}

// paginationFrom reads the upstream X-WP-Total/X-WP-TotalPages headers,
// falling back to counts derived from the result set.
func paginationFrom(headers http.Header, q Query, resultCount int) Pagination {
	total := resultCount
	totalPages := 1
	if headers != nil {
		if v, err := strconv.Atoi(headers.Get("X-WP-Total")); err == nil {
			total = v
		}
		if v, err := strconv.Atoi(headers.Get("X-WP-TotalPages")); err == nil {
			totalPages = v
		}
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: q.Page < totalPages,
		HasPrevPage: q.Page > 1,
	}
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		for _, val := range vals {
			out.Add(k, val)
		}
	}
	return out
}
