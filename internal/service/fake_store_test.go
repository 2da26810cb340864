package service_test

import (
	"context"
	"database/sql"

	"github.com/GTDGit/stockcentral/internal/models"
)

// fakeStore is an in-memory CatalogStore.
type fakeStore struct {
	items    map[int]*models.CatalogItem
	children map[int][]int
	meta     map[int]map[string]string

	searchIDs   []int
	searchTotal int
	searchErr   error
	getErr      error
	saveErr     error

	lastSearch string
	lastLimit  int
	lastOffset int
	getCalls   int
	saves      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    map[int]*models.CatalogItem{},
		children: map[int][]int{},
		meta:     map[int]map[string]string{},
	}
}

func (f *fakeStore) add(item models.CatalogItem) {
	it := item
	f.items[item.ID] = &it
	if item.ParentID != nil {
		f.children[*item.ParentID] = append(f.children[*item.ParentID], item.ID)
	}
}

func (f *fakeStore) setMeta(id int, key, value string) {
	if f.meta[id] == nil {
		f.meta[id] = map[string]string{}
	}
	f.meta[id][key] = value
}

func (f *fakeStore) Search(ctx context.Context, search string, limit, offset int) ([]int, int, error) {
	f.lastSearch, f.lastLimit, f.lastOffset = search, limit, offset
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	return f.searchIDs, f.searchTotal, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int) (*models.CatalogItem, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	it, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) GetChildIDs(ctx context.Context, parentID int) ([]int, error) {
	return f.children[parentID], nil
}

func (f *fakeStore) GetMeta(ctx context.Context, itemID int, key string) (string, error) {
	return f.meta[itemID][key], nil
}

func (f *fakeStore) Save(ctx context.Context, item *models.CatalogItem) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	f.saves++
	cp := *item
	cp.ClearPendingMeta()
	f.items[item.ID] = &cp
	for k, v := range item.PendingMeta() {
		f.setMeta(item.ID, k, v)
	}
	item.ClearPendingMeta()
	return nil
}

type countingRecorder struct {
	results []string
}

func (r *countingRecorder) ObserveSave(result string) {
	r.results = append(r.results, result)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
