package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"topsheet/internal/services"
)

// TopSheetHandler handles top sheet requests.
type TopSheetHandler struct {
	topSheetService services.TopSheetServicer
}

// NewTopSheetHandler creates a new TopSheetHandler.
func NewTopSheetHandler(topSheetService services.TopSheetServicer) *TopSheetHandler {
	return &TopSheetHandler{topSheetService: topSheetService}
}

// GetTopSheet handles serving the cached top sheet.
// @Summary     Get the top sheet
// @Description Serve the cached top sheet with a staleness flag; computes on first read
// @Tags        topsheet
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.TopSheet "Top sheet"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/topsheet [get]
func (h *TopSheetHandler) GetTopSheet(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sheet, err := h.topSheetService.GetTopSheet(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topsheet": sheet})
}

// ComputeTopSheet handles recomputing the top sheet snapshot.
// @Summary     Recompute the top sheet
// @Description Rebuild the top sheet from current categories and persist the snapshot
// @Tags        topsheet
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} models.TopSheet "Freshly computed top sheet"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Integrity violation"
// @Router      /budgets/{id}/topsheet/compute [post]
func (h *TopSheetHandler) ComputeTopSheet(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sheet, err := h.topSheetService.ComputeTopSheet(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topsheet": sheet})
}
