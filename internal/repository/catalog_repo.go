package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/stockcentral/internal/models"
)

// CatalogRepository is the PostgreSQL-backed catalog store: items, their
// variants and per-item metadata.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const itemColumns = `id, parent_id, kind, title, sku, stock_quantity, regular_price,
        sale_price, thumbnail_url, menu_order, created_at, updated_at`

// Search returns one page of top-level item ids (simple and composite) whose
// title or SKU contains search, newest first, plus the total match count.
// An empty search matches everything.
func (r *CatalogRepository) Search(ctx context.Context, search string, limit, offset int) ([]int, int, error) {
	const baseWhere = `WHERE parent_id IS NULL
        AND ($1 = '' OR title ILIKE $2 ESCAPE '\' OR sku ILIKE $2 ESCAPE '\')`
	pattern := likePattern(search)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM catalog_items `+baseWhere, search, pattern); err != nil {
		return nil, 0, fmt.Errorf("count catalog items: %w", err)
	}

	listQuery := `SELECT id FROM catalog_items ` + baseWhere + `
        ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	ids := []int{}
	if err := r.db.SelectContext(ctx, &ids, listQuery, search, pattern, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list catalog items: %w", err)
	}
	return ids, total, nil
}

// GetByID returns a single item. Missing items return sql.ErrNoRows.
func (r *CatalogRepository) GetByID(ctx context.Context, id int) (*models.CatalogItem, error) {
	q := `SELECT ` + itemColumns + ` FROM catalog_items WHERE id = $1 LIMIT 1`
	var item models.CatalogItem
	if err := r.db.GetContext(ctx, &item, q, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetChildIDs returns the variant ids of a composite in display order.
func (r *CatalogRepository) GetChildIDs(ctx context.Context, parentID int) ([]int, error) {
	const q = `SELECT id FROM catalog_items WHERE parent_id = $1 ORDER BY menu_order ASC, id ASC`
	ids := []int{}
	if err := r.db.SelectContext(ctx, &ids, q, parentID); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMeta returns a metadata value, or "" when the key is not set.
func (r *CatalogRepository) GetMeta(ctx context.Context, itemID int, key string) (string, error) {
	const q = `SELECT meta_value FROM catalog_item_meta WHERE item_id = $1 AND meta_key = $2`
	var v string
	if err := r.db.GetContext(ctx, &v, q, itemID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

// Save writes the editable columns of item and its pending metadata in one
// transaction. A missing item returns sql.ErrNoRows and nothing is written.
func (r *CatalogRepository) Save(ctx context.Context, item *models.CatalogItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const update = `UPDATE catalog_items
              SET stock_quantity = $1, regular_price = $2, sale_price = $3, updated_at = NOW()
              WHERE id = $4
              RETURNING updated_at`
	if err := tx.QueryRowxContext(ctx, update,
		item.StockQuantity,
		item.RegularPrice,
		item.SalePrice,
		item.ID,
	).Scan(&item.UpdatedAt); err != nil {
		return err
	}

	const upsertMeta = `INSERT INTO catalog_item_meta (item_id, meta_key, meta_value)
              VALUES ($1, $2, $3)
              ON CONFLICT (item_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`
	for key, value := range item.PendingMeta() {
		if _, err := tx.ExecContext(ctx, upsertMeta, item.ID, key, value); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	item.ClearPendingMeta()
	return nil
}

// Ping checks the catalog database connection.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// likePattern turns user text into a contains-pattern with LIKE wildcards escaped.
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}
