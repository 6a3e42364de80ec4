package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "zenstream/internal/errors"
	"zenstream/internal/service"
)

type ShopHandler struct {
	shopService *service.ShopService
}

type purchaseRequest struct {
	ItemID string `json:"itemId"`
}

func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

func (h *ShopHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.shopService.Catalog()})
}

func (h *ShopHandler) GetProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progress": h.shopService.GetProgress()})
}

func (h *ShopHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	if req.ItemID == "" {
		writeError(c, apperrors.BadRequest("invalid_item", "itemId is required"))
		return
	}

	purchase, progress, apiErr := h.shopService.Purchase(c.Request.Context(), req.ItemID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase": purchase, "progress": progress})
}

func (h *ShopHandler) ListPurchases(c *gin.Context) {
	purchases, apiErr := h.shopService.ListPurchases(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
