package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
)

type printedPages struct {
	Pages []models.PrintedPage `json:"pages"`
}

func (a *api) listPrintStatuses(c *gin.Context) {
	statuses, err := a.store.ListPrintStatuses(c.Request.Context())
	if err != nil {
		respondError(c, "listPrintStatuses", err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (a *api) listVendorPrintStatuses(c *gin.Context) {
	statuses, err := a.store.ListVendorPrintStatuses(c.Request.Context(), c.Param("vendorName"))
	if err != nil {
		respondError(c, "listVendorPrintStatuses", err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (a *api) markPagePrinted(c *gin.Context) {
	var page models.PrintedPage
	if !bindJSON(c, "markPagePrinted", &page) {
		return
	}
	status, err := a.store.MarkPagePrinted(c.Request.Context(), page)
	if err != nil {
		respondError(c, "markPagePrinted", err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (a *api) markPagesPrinted(c *gin.Context) {
	var input printedPages
	if !bindJSON(c, "markPagesPrinted", &input) {
		return
	}
	result, err := a.store.MarkPagesPrinted(c.Request.Context(), input.Pages)
	if err != nil {
		respondError(c, "markPagesPrinted", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Pages marked as printed",
		"modifiedCount": result.ModifiedCount,
		"upsertedCount": result.UpsertedCount,
	})
}

func (a *api) unmarkPagePrinted(c *gin.Context) {
	pageNumber, err := strconv.Atoi(c.Param("pageNumber"))
	if err != nil {
		respondError(c, "unmarkPagePrinted", utils.NewValidationError("pageNumber", "pageNumber must be a number"))
		return
	}
	if err := a.store.UnmarkPagePrinted(c.Request.Context(), c.Param("vendorName"), pageNumber); err != nil {
		respondError(c, "unmarkPagePrinted", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Print status removed successfully"})
}

func (a *api) clearPrintStatuses(c *gin.Context) {
	deleted, err := a.store.ClearPrintStatuses(c.Request.Context())
	if err != nil {
		respondError(c, "clearPrintStatuses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All print statuses cleared", "deletedCount": deleted})
}

func (a *api) clearVendorPrintStatuses(c *gin.Context) {
	vendorName := c.Param("vendorName")
	deleted, err := a.store.ClearVendorPrintStatuses(c.Request.Context(), vendorName)
	if err != nil {
		respondError(c, "clearVendorPrintStatuses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Print statuses cleared for vendor: " + vendorName,
		"deletedCount": deleted,
	})
}
