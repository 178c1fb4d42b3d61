package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

// WinnerHandler handles winner announcement HTTP requests
type WinnerHandler struct {
	winnerService services.WinnerService
}

// NewWinnerHandler creates a new WinnerHandler
func NewWinnerHandler(winnerService services.WinnerService) *WinnerHandler {
	return &WinnerHandler{winnerService: winnerService}
}

// GetRecentWinners handles GET /winners/recent
func (h *WinnerHandler) GetRecentWinners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	winners, err := h.winnerService.GetRecentWinners(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}
