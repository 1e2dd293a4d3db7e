package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/bill"
	"github.com/fekuna/omnipos-restaurant-service/internal/bill/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/httperrors"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	uc     bill.UseCase
	logger logger.ZapLogger
}

func NewBillHandler(uc bill.UseCase, log logger.ZapLogger) *BillHandler {
	return &BillHandler{uc: uc, logger: log}
}

func (h *BillHandler) MapRoutes(g *gin.RouterGroup) {
	g.POST("/open-or-fetch", h.OpenOrFetch)
	g.GET("/:id", h.Get)
	g.POST("/:id/items", h.AddItem)
	g.POST("/:id/pay", h.Pay)
	g.POST("/:id/cancel", h.Cancel)
}

func (h *BillHandler) OpenOrFetch(c *gin.Context) {
	var body struct {
		TableID int64 `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	b, err := h.uc.OpenOrFetch(c.Request.Context(), body.TableID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BillHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.uc.GetBill(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BillHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.AddBillItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	b, err := h.uc.AddItem(c.Request.Context(), id, &input)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BillHandler) Pay(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.PayBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	b, err := h.uc.Pay(c.Request.Context(), id, &input)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BillHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.uc.Cancel(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httperrors.Respond(c, apperr.Validation("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
