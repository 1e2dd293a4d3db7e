package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order"
	"github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/httperrors"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) MapRoutes(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/kitchen-queue", h.KitchenQueue)
	g.GET("/:id", h.Get)
	g.POST("/:id/advance", h.Advance)
	g.POST("/:id/status", h.SetStatus)
	g.POST("/:id/cancel", h.Cancel)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input dto.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	o, err := h.uc.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.uc.GetOrder(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	storeID, _ := strconv.ParseInt(c.Query("store_id"), 10, 64)
	tableID, _ := strconv.ParseInt(c.Query("table_id"), 10, 64)
	filters := &dto.OrderFilters{
		StoreID: storeID,
		TableID: tableID,
		Status:  model.OrderStatus(c.Query("status")),
	}
	orders, err := h.uc.ListOrders(c.Request.Context(), filters)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Advance(c *gin.Context) {
	h.mutate(c, h.uc.AdvanceOrder)
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	o, err := h.uc.SetStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.uc.CancelOrder)
}

func (h *OrderHandler) KitchenQueue(c *gin.Context) {
	storeID, _ := strconv.ParseInt(c.Query("store_id"), 10, 64)
	queue, err := h.uc.KitchenQueue(c.Request.Context(), storeID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *OrderHandler) mutate(c *gin.Context, fn func(ctx context.Context, id int64) (*model.Order, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := fn(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httperrors.Respond(c, apperr.Validation("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
