package service

import (
	"context"

	"github.com/GTDGit/stockcentral/internal/models"
)

// CatalogStore is the typed catalog store the grid reads from and saves to.
// Missing items are reported as sql.ErrNoRows. *repository.CatalogRepository
// is the production implementation.
type CatalogStore interface {
	Search(ctx context.Context, search string, limit, offset int) ([]int, int, error)
	GetByID(ctx context.Context, id int) (*models.CatalogItem, error)
	GetChildIDs(ctx context.Context, parentID int) ([]int, error)
	GetMeta(ctx context.Context, itemID int, key string) (string, error)
	Save(ctx context.Context, item *models.CatalogItem) error
}

// SaveRecorder counts save outcomes; see metrics.Metrics.
type SaveRecorder interface {
	ObserveSave(result string)
}

// Save outcomes reported to SaveRecorder.
const (
	SaveResultSaved    = "saved"
	SaveResultNotFound = "not_found"
	SaveResultInvalid  = "invalid"
	SaveResultError    = "error"
)
