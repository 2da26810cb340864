package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/utils"
)

// ItemView is one grid row: the display and edit fields of an item and, for
// composites, its variant rows in display order.
type ItemView struct {
	ID             int
	ParentID       int
	Title          string
	Kind           models.ItemKind
	TypeLabel      string
	SKU            string
	ThumbnailURL   string
	Stock          string
	SecondaryStock string
	Price          string
	SalePrice      string
	Editable       bool
	Composite      bool
	Variants       []ItemView
}

// ItemPresenter loads ItemViews from the catalog store.
type ItemPresenter struct {
	store CatalogStore
}

// NewItemPresenter constructs an ItemPresenter.
func NewItemPresenter(store CatalogStore) *ItemPresenter {
	return &ItemPresenter{store: store}
}

// Present loads an item and, for composites, each variant with its own fetch.
// A missing item returns utils.ErrItemNotFound; missing variants are skipped.
func (p *ItemPresenter) Present(ctx context.Context, id int) (*ItemView, error) {
	view, item, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsComposite() {
		return view, nil
	}

	childIDs, err := p.store.GetChildIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load variants of %d: %w", id, err)
	}
	view.Variants = make([]ItemView, 0, len(childIDs))
	for _, childID := range childIDs {
		child, _, err := p.load(ctx, childID)
		if err != nil {
			if errors.Is(err, utils.ErrItemNotFound) {
				continue
			}
			return nil, fmt.Errorf("load variant %d: %w", childID, err)
		}
		child.ParentID = id
		view.Variants = append(view.Variants, *child)
	}
	return view, nil
}

func (p *ItemPresenter) load(ctx context.Context, id int) (*ItemView, *models.CatalogItem, error) {
	item, err := p.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug().Int("item_id", id).Msg("item vanished before render")
			return nil, nil, utils.ErrItemNotFound
		}
		return nil, nil, err
	}

	secondary, err := p.store.GetMeta(ctx, id, models.MetaSecondaryStock)
	if err != nil {
		return nil, nil, fmt.Errorf("load secondary stock of %d: %w", id, err)
	}

	view := &ItemView{
		ID:             item.ID,
		Title:          item.Title,
		Kind:           item.Kind,
		TypeLabel:      typeLabel(item.Kind),
		SKU:            item.SKU,
		SecondaryStock: secondary,
		Price:          item.GetRegularPrice(),
		SalePrice:      item.GetSalePrice(),
		Editable:       item.IsEditable(),
		Composite:      item.IsComposite(),
	}
	if item.ParentID != nil {
		view.ParentID = *item.ParentID
	}
	if item.ThumbnailURL != nil {
		view.ThumbnailURL = *item.ThumbnailURL
	}
	if q := item.GetStockQuantity(); q != nil {
		view.Stock = strconv.Itoa(*q)
	}
	return view, item, nil
}

func typeLabel(kind models.ItemKind) string {
	switch kind {
	case models.ItemKindSimple:
		return "Simple"
	case models.ItemKindComposite:
		return "Composite"
	case models.ItemKindVariant:
		return "Variation"
	default:
		return string(kind)
	}
}
