package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/table"
	"github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/httperrors"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	uc     table.UseCase
	logger logger.ZapLogger
}

func NewTableHandler(uc table.UseCase, log logger.ZapLogger) *TableHandler {
	return &TableHandler{uc: uc, logger: log}
}

func (h *TableHandler) MapRoutes(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/areas", h.Areas)
	g.GET("/status-counts", h.StatusCounts)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.POST("/:id/status", h.SetStatus)
	g.POST("/:id/open-sale", h.OpenSale)
	g.POST("/:id/close-sale", h.CloseSale)
	g.POST("/:id/disable", h.Disable)
	g.POST("/:id/enable", h.Enable)
}

func (h *TableHandler) Create(c *gin.Context) {
	var input dto.CreateTableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	t, err := h.uc.CreateTable(c.Request.Context(), &input)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TableHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.uc.GetTable(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TableHandler) List(c *gin.Context) {
	storeID, _ := strconv.ParseInt(c.Query("store_id"), 10, 64)
	filters := &dto.TableFilters{
		StoreID: storeID,
		Area:    c.Query("area"),
		Status:  model.TableStatus(c.Query("status")),
	}
	tables, err := h.uc.ListTables(c.Request.Context(), filters)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *TableHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.UpdateTableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	input.ID = id
	t, err := h.uc.UpdateTable(c.Request.Context(), &input)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TableHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Status model.TableStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	t, err := h.uc.SetStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TableHandler) OpenSale(c *gin.Context) {
	h.mutate(c, h.uc.OpenSale)
}

func (h *TableHandler) CloseSale(c *gin.Context) {
	h.mutate(c, h.uc.CloseSale)
}

func (h *TableHandler) Disable(c *gin.Context) {
	h.mutate(c, h.uc.DisableTable)
}

func (h *TableHandler) Enable(c *gin.Context) {
	h.mutate(c, h.uc.EnableTable)
}

func (h *TableHandler) Areas(c *gin.Context) {
	storeID, _ := strconv.ParseInt(c.Query("store_id"), 10, 64)
	areas, err := h.uc.Areas(c.Request.Context(), storeID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"areas": areas})
}

func (h *TableHandler) StatusCounts(c *gin.Context) {
	storeID, _ := strconv.ParseInt(c.Query("store_id"), 10, 64)
	counts, err := h.uc.StatusCounts(c.Request.Context(), storeID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *TableHandler) mutate(c *gin.Context, fn func(ctx context.Context, id int64) (*model.Table, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := fn(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httperrors.Respond(c, apperr.Validation("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
