package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// ScheduleDrawRequest is the payload for POST /draws/schedule
type ScheduleDrawRequest struct {
	CategoryID string    `json:"category_id" binding:"required"`
	OpenTime   time.Time `json:"open_time" binding:"required"`
	CloseTime  time.Time `json:"close_time" binding:"required"`
}

// ScheduleDraw handles POST /draws/schedule
func (h *DrawHandler) ScheduleDraw(c *gin.Context) {
	var request ScheduleDrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(request.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	draw, err := h.drawService.ScheduleDraw(c.Request.Context(), categoryID, request.OpenTime, request.CloseTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// GetDrawByID handles GET /draws/:id
func (h *DrawHandler) GetDrawByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.GetDrawByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawHistory handles GET /categories/:id/draws
func (h *DrawHandler) GetDrawHistory(c *gin.Context) {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	draws, err := h.drawService.GetDrawHistory(c.Request.Context(), categoryID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draws)
}

// OpenDraw handles POST /draws/:id/open
func (h *DrawHandler) OpenDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.OpenDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// CloseDraw handles POST /draws/:id/close
func (h *DrawHandler) CloseDraw(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.CloseDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// ProcessDueDraws handles POST /draws/process-due
func (h *DrawHandler) ProcessDueDraws(c *gin.Context) {
	opened, closed, err := h.drawService.ProcessDueDraws(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"opened": opened, "closed": closed})
}

// VerifyPicksRequest is the payload for POST /draws/verify-picks. It lets
// anyone re-derive a published pick-N result from the draw's ledger hash.
type VerifyPicksRequest struct {
	Seed       string            `json:"seed" binding:"required"`
	GameConfig models.GameConfig `json:"game_config" binding:"required"`
}

// VerifyPicks handles POST /draws/verify-picks
func (h *DrawHandler) VerifyPicks(c *gin.Context) {
	var request VerifyPicksRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	picks, err := h.drawService.ComputeWinningPicks(request.Seed, request.GameConfig)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seed": request.Seed, "winning_picks": picks})
}
