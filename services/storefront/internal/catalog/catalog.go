// Package catalog loads the storefront's static product document.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/httpclient"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/domain"
)

// document is the on-disk and on-wire catalog shape.
type document struct {
	Status   string           `json:"status"`
	Message  string           `json:"message,omitempty"`
	Products []domain.Product `json:"products"`
}

// Catalog is a read-only, ordered set of products.
type Catalog struct {
	products []domain.Product
	byID     map[domain.ID]int
}

// Parse decodes a catalog document. A status other than "success", a product
// without an id or a duplicate id is an error.
func Parse(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Status != "success" {
		return nil, fmt.Errorf("catalog status %q: %s", doc.Status, doc.Message)
	}

	c := &Catalog{
		products: make([]domain.Product, 0, len(doc.Products)),
		byID:     make(map[domain.ID]int, len(doc.Products)),
	}
	for i, p := range doc.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog product #%d: %w", i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog product #%d: duplicate id %s", i, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// LoadFile reads the catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadURL fetches the catalog with a GET request through d.
func LoadURL(ctx context.Context, d httpclient.Doer, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}
	defer func() { _ = resp.Body.Close() }()
	return Parse(resp.Body)
}

// Products returns the products in document order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks a product up by id.
func (c *Catalog) Product(id domain.ID) (domain.Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id.String())
	}
	return c.products[idx], nil
}
