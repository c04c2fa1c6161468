package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
)

type priceUpdate struct {
	PricePerKg *decimal.Decimal `json:"pricePerKg" binding:"required"`
}

func (a *api) getPriceChart(c *gin.Context) {
	chart, err := a.store.PriceChart(c.Request.Context())
	if err != nil {
		respondError(c, "getPriceChart", err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (a *api) getPriceChartEntry(c *gin.Context) {
	entry, err := a.store.GetPriceChartEntry(c.Request.Context(), c.Param("wireThickness"), c.Param("payalType"))
	if err != nil {
		respondError(c, "getPriceChartEntry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wireThickness": entry.WireThickness,
		"payalType":     entry.PayalType,
		"pricePerKg":    entry.PricePerKg,
	})
}

func (a *api) upsertPriceChartEntry(c *gin.Context) {
	var input models.NewPayalPrice
	if !bindJSON(c, "upsertPriceChartEntry", &input) {
		return
	}
	entry, err := a.store.UpsertPriceChartEntry(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "upsertPriceChartEntry", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (a *api) updatePriceChartEntry(c *gin.Context) {
	var input priceUpdate
	if !bindJSON(c, "updatePriceChartEntry", &input) {
		return
	}
	entry, err := a.store.UpdatePriceChartEntry(c.Request.Context(), c.Param("wireThickness"), c.Param("payalType"), *input.PricePerKg)
	if err != nil {
		respondError(c, "updatePriceChartEntry", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (a *api) deletePriceChartEntry(c *gin.Context) {
	if err := a.store.DeletePriceChartEntry(c.Request.Context(), c.Param("wireThickness"), c.Param("payalType")); err != nil {
		respondError(c, "deletePriceChartEntry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price entry deleted successfully"})
}

func (a *api) deletePriceChartByThickness(c *gin.Context) {
	wireThickness := c.Param("wireThickness")
	deleted, err := a.store.DeletePriceChartByThickness(c.Request.Context(), wireThickness)
	if err != nil {
		respondError(c, "deletePriceChartByThickness", err)
		return
	}
	if deleted == 0 {
		respondError(c, "deletePriceChartByThickness", utils.NewPriceNotFoundError("No price entries found for this wire thickness"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("All price entries for %s deleted successfully", wireThickness),
		"deletedCount": deleted,
	})
}

func (a *api) seedPriceChart(c *gin.Context) {
	entries, err := a.store.SeedPriceChart(c.Request.Context())
	if err != nil {
		respondError(c, "seedPriceChart", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price chart seeded successfully", "count": len(entries)})
}
