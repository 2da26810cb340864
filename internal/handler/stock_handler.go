package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/pagination"
	"github.com/GTDGit/stockcentral/internal/service"
	"github.com/GTDGit/stockcentral/internal/session"
	"github.com/GTDGit/stockcentral/internal/utils"
	"github.com/GTDGit/stockcentral/internal/web"
)

const (
	noticeSaved      = "Stock and prices updated successfully."
	noticeSaveFailed = "Stock and prices could not be saved. Please try again."
)

// GridRow is one <tr> of the stock grid.
type GridRow struct {
	ItemID         int
	ParentID       int
	Title          string
	TypeLabel      string
	SKU            string
	ThumbnailURL   string
	Stock          string
	SecondaryStock string
	Price          string
	SalePrice      string
	Editable       bool
	Composite      bool
	Variant        bool
	Hidden         bool
}

// StockPage is the view model of the stock template.
type StockPage struct {
	BasePath   string
	FormAction string
	Search     string
	PageSize   int
	PageSizes  []int
	Nav        pagination.Nav
	Rows       []GridRow
	CSRFToken  string
	Notices    []session.Notice
}

// BuildGrid flattens presented items into table rows: each item row is
// followed by its variant rows, which start hidden and carry the parent id.
func BuildGrid(items []service.ItemView) []GridRow {
	rows := make([]GridRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, gridRow(item))
		for _, variant := range item.Variants {
			row := gridRow(variant)
			row.Title = "— " + variant.Title
			row.ThumbnailURL = ""
			row.Variant = true
			row.Hidden = true
			row.ParentID = item.ID
			rows = append(rows, row)
		}
	}
	return rows
}

func gridRow(v service.ItemView) GridRow {
	return GridRow{
		ItemID:         v.ID,
		ParentID:       v.ParentID,
		Title:          v.Title,
		TypeLabel:      v.TypeLabel,
		SKU:            v.SKU,
		ThumbnailURL:   v.ThumbnailURL,
		Stock:          v.Stock,
		SecondaryStock: v.SecondaryStock,
		Price:          v.Price,
		SalePrice:      v.SalePrice,
		Editable:       v.Editable,
		Composite:      v.Composite,
	}
}

// StockHandler serves the stock grid page.
type StockHandler struct {
	queryService *service.CatalogQueryService
	saveService  *service.StockSaveService
	sessions     *session.Manager
}

// NewStockHandler constructs a StockHandler.
func NewStockHandler(queryService *service.CatalogQueryService, saveService *service.StockSaveService, sessions *session.Manager) *StockHandler {
	return &StockHandler{
		queryService: queryService,
		saveService:  saveService,
		sessions:     sessions,
	}
}

// Show handles GET /admin/stock
func (h *StockHandler) Show(c *gin.Context) {
	h.render(c)
}

// Save handles POST /admin/stock. Only the row named by saveAction is
// processed; the page is rendered afterwards with the same query state.
func (h *StockHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := strconv.Atoi(c.PostForm("saveAction"))

	req := service.SaveRequest{
		ItemID:         id,
		RegularStock:   rowValue(c, "regularStock", id),
		SecondaryStock: rowValue(c, "secondaryStock", id),
		Price:          rowValue(c, "price", id),
		SalePrice:      rowValue(c, "salePrice", id),
	}

	_, err := h.saveService.Save(ctx, req)
	var verr *models.ValidationError
	switch {
	case err == nil:
		h.notify(c, session.NoticeSuccess, noticeSaved)
	case errors.Is(err, utils.ErrItemNotFound):
		// nothing to save
	case errors.As(err, &verr):
		h.notify(c, session.NoticeError, "Item "+strconv.Itoa(id)+" was not saved: "+verr.Error())
	default:
		h.notify(c, session.NoticeError, noticeSaveFailed)
	}

	h.render(c)
}

// rowValue returns the submitted field[id] value, or nil when absent.
func rowValue(c *gin.Context, field string, id int) *string {
	values := c.PostFormMap(field)
	v, ok := values[strconv.Itoa(id)]
	if !ok {
		return nil
	}
	return &v
}

func (h *StockHandler) notify(c *gin.Context, kind, message string) {
	sess := session.FromContext(c)
	if sess == nil {
		return
	}
	if err := h.sessions.AddNotice(c.Request.Context(), sess, kind, message); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to queue notice")
	}
}

func (h *StockHandler) render(c *gin.Context) {
	ctx := c.Request.Context()
	req := service.NewPageRequest(c.Query("search"), c.Query("pageSize"), c.Query("page"))
	result := h.queryService.Page(ctx, req)

	page := StockPage{
		BasePath:   c.Request.URL.Path,
		FormAction: c.Request.URL.RequestURI(),
		Search:     req.Search,
		PageSize:   req.PageSize,
		PageSizes:  service.PageSizes,
		Nav:        pagination.ComputeNav(result.TotalPages, req.Page, c.Request.URL),
		Rows:       BuildGrid(result.Items),
	}
	if sess := session.FromContext(c); sess != nil {
		page.CSRFToken = sess.CSRFToken
		page.Notices = h.sessions.PopNotices(ctx, sess)
	}

	c.HTML(http.StatusOK, web.StockTemplate, page)
}
