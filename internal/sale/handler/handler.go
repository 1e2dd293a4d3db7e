package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/sale"
	"github.com/fekuna/omnipos-restaurant-service/internal/sale/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/httperrors"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	uc     sale.UseCase
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{uc: uc, logger: log}
}

func (h *SaleHandler) MapRoutes(g *gin.RouterGroup) {
	g.GET("/:id", h.Get)
	g.GET("/open-by-table/:tableId", h.GetOpenByTable)
	g.POST("/:id/items", h.AddItem)
	g.PATCH("/:id/items/:productId/quantity", h.UpdateQuantity)
	g.DELETE("/:id/items/:productId", h.RemoveItem)
	g.PUT("/:id/items/:productId/note", h.SetItemNote)
	g.PUT("/:id/items/:productId/discount", h.SetItemDiscount)
	g.POST("/:id/send-to-kitchen", h.SendToKitchen)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.uc.GetSale(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) GetOpenByTable(c *gin.Context) {
	tableID, ok := pathID(c, "tableId")
	if !ok {
		return
	}
	s, err := h.uc.GetOpenByTable(c.Request.Context(), tableID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input dto.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	s, err := h.uc.AddItem(c.Request.Context(), id, input.ProductID, quantity)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) UpdateQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var input dto.UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	s, err := h.uc.UpdateQuantity(c.Request.Context(), id, productID, input.Delta)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	s, err := h.uc.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) SetItemNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var input dto.ItemNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	s, err := h.uc.SetItemNote(c.Request.Context(), id, productID, input.Note)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) SetItemDiscount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	var input dto.ItemDiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httperrors.Respond(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	s, err := h.uc.SetItemDiscount(c.Request.Context(), id, productID, input.Discount)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SaleHandler) SendToKitchen(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.uc.SendToKitchen(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		httperrors.Respond(c, apperr.Validation("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}
