package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/utils"
)

// SaveRequest carries the submitted values of the one row being saved. A nil
// field was not submitted and is left untouched.
type SaveRequest struct {
	ItemID         int
	RegularStock   *string
	SecondaryStock *string
	Price          *string
	SalePrice      *string
}

// StockSaveService applies grid edits to a single catalog item.
type StockSaveService struct {
	store    CatalogStore
	recorder SaveRecorder
}

// NewStockSaveService constructs a StockSaveService. recorder may be nil.
func NewStockSaveService(store CatalogStore, recorder SaveRecorder) *StockSaveService {
	return &StockSaveService{store: store, recorder: recorder}
}

// Save coerces each submitted field through the store setters and persists
// the item. Unknown ids return utils.ErrItemNotFound, coercion failures
// return *models.ValidationError; in both cases nothing is written.
func (s *StockSaveService) Save(ctx context.Context, req SaveRequest) (*models.CatalogItem, error) {
	item, err := s.save(ctx, req)
	logger := log.Ctx(ctx)
	var verr *models.ValidationError
	switch {
	case err == nil:
		s.observe(SaveResultSaved)
		logger.Info().Int("item_id", item.ID).Msg("stock and prices updated")
	case errors.Is(err, utils.ErrItemNotFound):
		s.observe(SaveResultNotFound)
		logger.Debug().Int("item_id", req.ItemID).Msg("save skipped, item not found")
	case errors.As(err, &verr):
		s.observe(SaveResultInvalid)
		logger.Info().Int("item_id", req.ItemID).Str("field", verr.Field).Msg("save rejected")
	default:
		s.observe(SaveResultError)
		logger.Error().Err(err).Int("item_id", req.ItemID).Msg("save failed")
	}
	return item, err
}

func (s *StockSaveService) save(ctx context.Context, req SaveRequest) (*models.CatalogItem, error) {
	if req.ItemID <= 0 {
		return nil, utils.ErrItemNotFound
	}

	item, err := s.store.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrItemNotFound
		}
		return nil, fmt.Errorf("load item %d: %w", req.ItemID, err)
	}

	if req.RegularStock != nil {
		if err := item.SetStockQuantity(utils.CleanText(*req.RegularStock)); err != nil {
			return nil, err
		}
	}
	if req.SecondaryStock != nil {
		item.SetMeta(models.MetaSecondaryStock, utils.CleanText(*req.SecondaryStock))
	}
	if req.Price != nil {
		if err := item.SetRegularPrice(utils.CleanText(*req.Price)); err != nil {
			return nil, err
		}
	}
	if req.SalePrice != nil {
		if err := item.SetSalePrice(utils.CleanText(*req.SalePrice)); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrItemNotFound
		}
		return nil, fmt.Errorf("save item %d: %w", item.ID, err)
	}
	return item, nil
}

func (s *StockSaveService) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveSave(result)
	}
}
