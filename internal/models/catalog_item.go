package models

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind enumerates the catalog item kinds.
type ItemKind string

const (
	ItemKindSimple    ItemKind = "simple"
	ItemKindComposite ItemKind = "composite"
	ItemKindVariant   ItemKind = "variant"
)

// MetaSecondaryStock is the metadata key holding the secondary stock counter.
// It is never reconciled with StockQuantity.
const MetaSecondaryStock = "_secondary_stock"

// CatalogItem is a product or variant row of the catalog store. Variants carry
// ParentID; composites own no stock or price of their own in the grid.
type CatalogItem struct {
	ID            int       `db:"id" json:"id"`
	ParentID      *int      `db:"parent_id" json:"parentId,omitempty"`
	Kind          ItemKind  `db:"kind" json:"kind"`
	Title         string    `db:"title" json:"title"`
	SKU           string    `db:"sku" json:"sku"`
	StockQuantity *int      `db:"stock_quantity" json:"stockQuantity"`
	RegularPrice  string    `db:"regular_price" json:"regularPrice"`
	SalePrice     string    `db:"sale_price" json:"salePrice"`
	ThumbnailURL  *string   `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	MenuOrder     int       `db:"menu_order" json:"menuOrder"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	// pending metadata writes, flushed by the store's Save.
	meta map[string]string
}

// ValidationError reports a value the store refused to coerce.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsComposite reports whether the item groups variants.
func (i *CatalogItem) IsComposite() bool {
	return i.Kind == ItemKindComposite
}

// IsEditable reports whether stock and price inputs are exposed for the item.
func (i *CatalogItem) IsEditable() bool {
	return i.Kind == ItemKindSimple || i.Kind == ItemKindVariant
}

// GetStockQuantity returns the tracked stock or nil when stock is not tracked.
func (i *CatalogItem) GetStockQuantity() *int {
	return i.StockQuantity
}

// SetStockQuantity parses v as an integer that fits the INTEGER stock column.
// An empty value stops tracking.
func (i *CatalogItem) SetStockQuantity(v string) error {
	if v == "" {
		i.StockQuantity = nil
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsInteger() {
		return &ValidationError{Field: "stock", Value: v, Reason: "not an integer"}
	}
	if d.LessThan(minStock) || d.GreaterThan(maxStock) {
		return &ValidationError{Field: "stock", Value: v, Reason: "out of range"}
	}
	n := int(d.IntPart())
	i.StockQuantity = &n
	return nil
}

var (
	minStock = decimal.NewFromInt(math.MinInt32)
	maxStock = decimal.NewFromInt(math.MaxInt32)
)

// GetRegularPrice returns the regular price as stored.
func (i *CatalogItem) GetRegularPrice() string {
	return i.RegularPrice
}

// SetRegularPrice normalises v as a decimal. An empty value clears the price.
func (i *CatalogItem) SetRegularPrice(v string) error {
	p, err := formatPrice("price", v)
	if err != nil {
		return err
	}
	i.RegularPrice = p
	return nil
}

// GetSalePrice returns the sale price as stored.
func (i *CatalogItem) GetSalePrice() string {
	return i.SalePrice
}

// SetSalePrice normalises v as a decimal. An empty value clears the sale.
func (i *CatalogItem) SetSalePrice(v string) error {
	p, err := formatPrice("sale price", v)
	if err != nil {
		return err
	}
	i.SalePrice = p
	return nil
}

// SetMeta queues a metadata write for the next Save.
func (i *CatalogItem) SetMeta(key, value string) {
	if i.meta == nil {
		i.meta = make(map[string]string)
	}
	i.meta[key] = value
}

// PendingMeta returns queued metadata writes.
func (i *CatalogItem) PendingMeta() map[string]string {
	return i.meta
}

// ClearPendingMeta drops queued metadata writes after they were persisted.
func (i *CatalogItem) ClearPendingMeta() {
	i.meta = nil
}

func formatPrice(field, v string) (string, error) {
	if v == "" {
		return "", nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return "", &ValidationError{Field: field, Value: v, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return "", &ValidationError{Field: field, Value: v, Reason: "must not be negative"}
	}
	// keep the submitted scale so "19.90" stays "19.90"
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp), nil
	}
	return d.String(), nil
}
