package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/stockcentral/internal/config"
	"github.com/GTDGit/stockcentral/internal/handler"
	"github.com/GTDGit/stockcentral/internal/middleware"
	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/service"
	"github.com/GTDGit/stockcentral/internal/session"
	"github.com/GTDGit/stockcentral/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCatalog struct {
	items    map[int]*models.CatalogItem
	order    []int
	children map[int][]int
	meta     map[int]map[string]string
	saves    int
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		items:    map[int]*models.CatalogItem{},
		children: map[int][]int{},
		meta:     map[int]map[string]string{},
	}
}

func (m *memoryCatalog) add(item models.CatalogItem) {
	it := item
	m.items[item.ID] = &it
	if item.ParentID != nil {
		m.children[*item.ParentID] = append(m.children[*item.ParentID], item.ID)
		return
	}
	m.order = append(m.order, item.ID)
}

func (m *memoryCatalog) Search(ctx context.Context, search string, limit, offset int) ([]int, int, error) {
	var ids []int
	for _, id := range m.order {
		if search == "" || strings.Contains(strings.ToLower(m.items[id].Title), strings.ToLower(search)) {
			ids = append(ids, id)
		}
	}
	total := len(ids)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return ids[offset:end], total, nil
}

func (m *memoryCatalog) GetByID(ctx context.Context, id int) (*models.CatalogItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

func (m *memoryCatalog) GetChildIDs(ctx context.Context, parentID int) ([]int, error) {
	return m.children[parentID], nil
}

func (m *memoryCatalog) GetMeta(ctx context.Context, itemID int, key string) (string, error) {
	return m.meta[itemID][key], nil
}

func (m *memoryCatalog) Save(ctx context.Context, item *models.CatalogItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	m.saves++
	for k, v := range item.PendingMeta() {
		if m.meta[item.ID] == nil {
			m.meta[item.ID] = map[string]string{}
		}
		m.meta[item.ID][k] = v
	}
	item.ClearPendingMeta()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func intPtr(v int) *int { return &v }

func seedCatalog() *memoryCatalog {
	store := newMemoryCatalog()
	store.add(models.CatalogItem{ID: 42, Kind: models.ItemKindSimple, Title: "Blue Mug", SKU: "MUG-42", StockQuantity: intPtr(1), RegularPrice: "10.00"})
	store.add(models.CatalogItem{ID: 10, Kind: models.ItemKindComposite, Title: "Shirt"})
	for _, id := range []int{11, 12, 13} {
		store.add(models.CatalogItem{ID: id, ParentID: intPtr(10), Kind: models.ItemKindVariant, Title: "Shirt variant"})
	}
	store.meta[42] = map[string]string{models.MetaSecondaryStock: "5"}
	return store
}

func newStockRouter(t *testing.T, store *memoryCatalog) *gin.Engine {
	t.Helper()
	tmpl, err := web.Templates()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	sessions := session.NewManager(session.NewMemoryStore(16, time.Hour), "secret", config.SessionConfig{CookieName: "sid", TTL: time.Hour})
	presenter := service.NewItemPresenter(store)
	h := handler.NewStockHandler(
		service.NewCatalogQueryService(store, presenter),
		service.NewStockSaveService(store, nil),
		sessions,
	)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	stock := r.Group("/admin/stock", sessions.Middleware(), middleware.CSRFMiddleware())
	stock.GET("", h.Show)
	stock.POST("", h.Save)
	return r
}

var csrfPattern = regexp.MustCompile(`name="csrfToken" value="([^"]+)"`)

func openGrid(t *testing.T, r *gin.Engine, target string) (string, *http.Cookie, string) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", target, w.Code)
	}
	m := csrfPattern.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatal("csrf token not rendered")
	}
	return w.Body.String(), w.Result().Cookies()[0], m[1]
}

func submit(r *gin.Engine, target string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuildGrid(t *testing.T) {
	items := []service.ItemView{
		{ID: 42, Title: "Mug", Editable: true},
		{ID: 10, Title: "Shirt", Composite: true, ThumbnailURL: "https://cdn.example.com/shirt.png", Variants: []service.ItemView{
			{ID: 11, Title: "Shirt S", Editable: true, ThumbnailURL: "https://cdn.example.com/s.png"},
			{ID: 12, Title: "Shirt M", Editable: true},
			{ID: 13, Title: "Shirt L", Editable: true},
		}},
	}

	rows := handler.BuildGrid(items)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].Hidden || rows[1].Hidden || rows[1].Variant {
		t.Errorf("item rows must be visible: %+v %+v", rows[0], rows[1])
	}
	for _, row := range rows[2:] {
		if !row.Variant || !row.Hidden || row.ParentID != 10 {
			t.Errorf("unexpected variant row: %+v", row)
		}
		if !strings.HasPrefix(row.Title, "— ") || row.ThumbnailURL != "" {
			t.Errorf("variant row title/image: %+v", row)
		}
	}
}

func TestStockHandlerShow(t *testing.T) {
	t.Run("Renders Items And Hidden Variants", func(t *testing.T) {
		r := newStockRouter(t, seedCatalog())
		body, _, _ := openGrid(t, r, "/admin/stock")

		for _, want := range []string{
			`name="regularStock[42]" value="1"`,
			`name="secondaryStock[42]" value="5"`,
			`name="price[42]" value="10.00"`,
			`name="saveAction" value="42"`,
			`Show Variations`,
			`— Shirt variant`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
		if n := strings.Count(body, `class="variation-row" data-parent-id="10" hidden`); n != 3 {
			t.Errorf("expected 3 hidden variant rows, got %d", n)
		}
		if strings.Contains(body, "tablenav") {
			t.Error("single page should not render pagination")
		}
	})

	t.Run("Empty Result", func(t *testing.T) {
		r := newStockRouter(t, seedCatalog())
		body, _, _ := openGrid(t, r, "/admin/stock?search=lamp")
		if !strings.Contains(body, "No products found.") {
			t.Error("expected empty message")
		}
	})

	t.Run("Pagination Keeps Query State", func(t *testing.T) {
		r := newStockRouter(t, seedCatalog())
		body, _, _ := openGrid(t, r, "/admin/stock?pageSize=10&search=&page=1")
		if strings.Contains(body, "tablenav") {
			t.Error("two items on one page should not paginate")
		}

		store := newMemoryCatalog()
		for id := 1; id <= 25; id++ {
			store.add(models.CatalogItem{ID: id, Kind: models.ItemKindSimple, Title: "Mug"})
		}
		r = newStockRouter(t, store)
		body, _, _ = openGrid(t, r, "/admin/stock?search=mug&pageSize=10")
		if !strings.Contains(body, "page=2&amp;pageSize=10&amp;search=mug") {
			t.Errorf("pagination link lost query state:\n%s", body)
		}
	})
}

func TestStockHandlerSave(t *testing.T) {
	t.Run("Saves Only The Clicked Row", func(t *testing.T) {
		store := seedCatalog()
		r := newStockRouter(t, store)
		_, cookie, token := openGrid(t, r, "/admin/stock?search=mug")

		w := submit(r, "/admin/stock?search=mug", cookie, url.Values{
			"csrfToken":          {token},
			"saveAction":         {"42"},
			"regularStock[42]":   {"7"},
			"price[42]":          {"19.99"},
			"regularStock[11]":   {"99"},
			"secondaryStock[11]": {"99"},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("POST = %d", w.Code)
		}

		if got := *store.items[42].StockQuantity; got != 7 {
			t.Errorf("stock = %d, want 7", got)
		}
		if store.items[42].RegularPrice != "19.99" {
			t.Errorf("price = %q", store.items[42].RegularPrice)
		}
		if store.meta[42][models.MetaSecondaryStock] != "5" {
			t.Errorf("secondary stock changed to %q", store.meta[42][models.MetaSecondaryStock])
		}
		if store.items[11].StockQuantity != nil || store.saves != 1 {
			t.Errorf("other rows were saved: saves=%d", store.saves)
		}

		body := w.Body.String()
		if !strings.Contains(body, "Stock and prices updated successfully.") {
			t.Error("success notice missing")
		}
		if !strings.Contains(body, `action="/admin/stock?search=mug"`) {
			t.Error("query state not preserved in form action")
		}
	})

	t.Run("Notice Is Shown Once", func(t *testing.T) {
		r := newStockRouter(t, seedCatalog())
		_, cookie, token := openGrid(t, r, "/admin/stock")
		submit(r, "/admin/stock", cookie, url.Values{"csrfToken": {token}, "saveAction": {"42"}, "regularStock[42]": {"3"}})

		req := httptest.NewRequest(http.MethodGet, "/admin/stock", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if strings.Contains(w.Body.String(), "updated successfully") {
			t.Error("notice rendered twice")
		}
	})

	t.Run("Unknown Item Is A No-op", func(t *testing.T) {
		store := seedCatalog()
		r := newStockRouter(t, store)
		_, cookie, token := openGrid(t, r, "/admin/stock")

		w := submit(r, "/admin/stock", cookie, url.Values{"csrfToken": {token}, "saveAction": {"99"}, "regularStock[99]": {"7"}})
		if w.Code != http.StatusOK || store.saves != 0 {
			t.Errorf("code=%d saves=%d", w.Code, store.saves)
		}
		if strings.Contains(w.Body.String(), "updated successfully") {
			t.Error("success notice for unknown item")
		}
	})

	t.Run("Invalid Value Shows Error", func(t *testing.T) {
		store := seedCatalog()
		r := newStockRouter(t, store)
		_, cookie, token := openGrid(t, r, "/admin/stock")

		w := submit(r, "/admin/stock", cookie, url.Values{"csrfToken": {token}, "saveAction": {"42"}, "regularStock[42]": {"lots"}})
		if store.saves != 0 {
			t.Errorf("invalid value saved")
		}
		if !strings.Contains(w.Body.String(), "notice-error") {
			t.Error("error notice missing")
		}
	})

	t.Run("Missing CSRF Token Rejected Without Mutation", func(t *testing.T) {
		store := seedCatalog()
		r := newStockRouter(t, store)
		_, cookie, _ := openGrid(t, r, "/admin/stock")

		w := submit(r, "/admin/stock", cookie, url.Values{"saveAction": {"42"}, "regularStock[42]": {"7"}})
		if w.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403", w.Code)
		}
		if store.saves != 0 || *store.items[42].StockQuantity != 1 {
			t.Error("item mutated without a valid token")
		}
	})
}
