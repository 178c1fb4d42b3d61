package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

// TicketHandler handles ticket purchase HTTP requests
type TicketHandler struct {
	ticketService services.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// BuyTicketsRequest is the payload for POST /tickets/buy
type BuyTicketsRequest struct {
	CategoryID    string  `json:"category_id" binding:"required"`
	WalletAddress string  `json:"wallet_address" binding:"required"`
	NumTickets    int     `json:"num_tickets" binding:"required"`
	Picks         [][]int `json:"picks"`
}

// BuyTickets handles POST /tickets/buy
func (h *TicketHandler) BuyTickets(c *gin.Context) {
	var request BuyTicketsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(request.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	tickets, err := h.ticketService.BuyTickets(c.Request.Context(), categoryID, request.WalletAddress, request.NumTickets, request.Picks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tickets": tickets, "count": len(tickets)})
}

// GetTicketsByDraw handles GET /draws/:id/tickets
func (h *TicketHandler) GetTicketsByDraw(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	tickets, err := h.ticketService.GetTicketsByDraw(c.Request.Context(), drawID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}
