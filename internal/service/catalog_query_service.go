package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/utils"
)

// DefaultPageSize is used whenever the requested page size is not offered.
const DefaultPageSize = 20

// PageSizes are the page sizes offered by the toolbar.
var PageSizes = []int{10, 20, 50, 100}

// PageRequest is the grid state carried in the query string.
type PageRequest struct {
	Search   string
	PageSize int
	Page     int
}

// PageResult is one rendered page of the grid.
type PageResult struct {
	Items      []ItemView
	TotalItems int
	TotalPages int
}

// NewPageRequest builds a PageRequest from raw query values, applying the
// same coercion the search does.
func NewPageRequest(search, pageSize, page string) PageRequest {
	size, _ := strconv.Atoi(pageSize)
	n, _ := strconv.Atoi(page)
	return PageRequest{
		Search:   utils.CleanText(search),
		PageSize: NormalizePageSize(size),
		Page:     NormalizePage(n),
	}
}

// NormalizePageSize returns size when it is one of PageSizes, otherwise DefaultPageSize.
func NormalizePageSize(size int) int {
	for _, s := range PageSizes {
		if s == size {
			return size
		}
	}
	return DefaultPageSize
}

// NormalizePage coerces page numbers to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// CatalogQueryService lists grid pages.
type CatalogQueryService struct {
	store     CatalogStore
	presenter *ItemPresenter
}

// NewCatalogQueryService constructs a CatalogQueryService.
func NewCatalogQueryService(store CatalogStore, presenter *ItemPresenter) *CatalogQueryService {
	return &CatalogQueryService{store: store, presenter: presenter}
}

// Search returns the item ids of the requested page and the total page
// count. Store failures are reported as utils.ErrStoreUnavailable.
func (s *CatalogQueryService) Search(ctx context.Context, req PageRequest) ([]int, int, int, error) {
	size := NormalizePageSize(req.PageSize)
	page := NormalizePage(req.Page)

	ids, total, err := s.store.Search(ctx, req.Search, size, (page-1)*size)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", utils.ErrStoreUnavailable, err)
	}
	totalPages := (total + size - 1) / size
	return ids, total, totalPages, nil
}

// Page runs the search and presents each row. An unavailable store yields
// an empty page with zero pages; rows that cannot be presented are skipped.
func (s *CatalogQueryService) Page(ctx context.Context, req PageRequest) *PageResult {
	ids, total, totalPages, err := s.Search(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("search", req.Search).Int("page", req.Page).Msg("catalog search failed, rendering empty page")
		return &PageResult{Items: []ItemView{}}
	}

	result := &PageResult{
		Items:      make([]ItemView, 0, len(ids)),
		TotalItems: total,
		TotalPages: totalPages,
	}
	for _, id := range ids {
		view, err := s.presenter.Present(ctx, id)
		if err != nil {
			if !errors.Is(err, utils.ErrItemNotFound) {
				log.Error().Err(err).Int("item_id", id).Msg("failed to present item")
			}
			continue
		}
		result.Items = append(result.Items, *view)
	}
	return result
}
