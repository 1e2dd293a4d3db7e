package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/catalog"
	"github.com/fekuna/omnipos-restaurant-service/pkg/httperrors"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	uc     catalog.UseCase
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{uc: uc, logger: log}
}

func (h *CatalogHandler) MapRoutes(g *gin.RouterGroup) {
	g.GET("/categories", h.RootCategories)
	g.GET("/categories/:id/subcategories", h.Subcategories)
	g.GET("/categories/:id/products", h.ProductsByCategory)
	g.GET("/products/search", h.SearchProducts)
	g.GET("/products/:id", h.GetProduct)
}

func (h *CatalogHandler) RootCategories(c *gin.Context) {
	categories, err := h.uc.RootCategories(c.Request.Context())
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) Subcategories(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	categories, err := h.uc.Subcategories(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.uc.GetProduct(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) ProductsByCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	products, err := h.uc.ProductsByCategory(c.Request.Context(), id)
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	products, err := h.uc.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		httperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httperrors.Respond(c, apperr.Validation("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
