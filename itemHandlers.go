package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
)

func (a *api) listTransactions(c *gin.Context) {
	transactions, err := a.store.ListTransactions(c.Request.Context(), models.TransactionFilter{})
	if err != nil {
		respondError(c, "listTransactions", err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (a *api) listTransactionsByType(c *gin.Context) {
	txType, err := models.ParseTransactionType(c.Param("type"))
	if err != nil {
		respondError(c, "listTransactionsByType", err)
		return
	}
	transactions, err := a.store.ListTransactions(c.Request.Context(), models.TransactionFilter{Type: txType})
	if err != nil {
		respondError(c, "listTransactionsByType", err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (a *api) createTransaction(c *gin.Context) {
	var input models.NewTransaction
	if !bindJSON(c, "createTransaction", &input) {
		return
	}
	transaction, err := a.store.CreateTransaction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createTransaction", err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (a *api) deleteTransaction(c *gin.Context) {
	id, ok := pathId(c, "deleteTransaction", "id")
	if !ok {
		return
	}
	transaction, err := a.store.DeleteTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteTransaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully", "transaction": transaction})
}

func (a *api) listAvailableInventory(c *gin.Context) {
	inventory, err := a.store.ListAvailableInventory(c.Request.Context())
	if err != nil {
		respondError(c, "listAvailableInventory", err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (a *api) exportAvailableInventory(c *gin.Context) {
	inventory, err := a.store.ListAvailableInventory(c.Request.Context())
	if err != nil {
		respondError(c, "exportAvailableInventory", err)
		return
	}
	sheet := utils.Sheet{
		Name:    "Available Inventory",
		Headers: []string{"Vendor", "Item", "Total Out", "Total In", "Available"},
	}
	for _, row := range inventory {
		sheet.Rows = append(sheet.Rows, []interface{}{
			row.Vendor,
			row.Item,
			utils.DecimalToFloat(row.TotalOut),
			utils.DecimalToFloat(row.TotalIn),
			utils.DecimalToFloat(row.Available),
		})
	}
	writeWorkbook(c, "exportAvailableInventory", "available-inventory.xlsx", sheet)
}

// checkAvailability reports what can still be returned for a vendor and item.
func (a *api) checkAvailability(c *gin.Context) {
	vendor, item := c.Query("vendor"), c.Query("item")
	if vendor == "" || item == "" {
		respondError(c, "checkAvailability", utils.NewValidationError("", "vendor and item query parameters are required"))
		return
	}
	availability, err := a.store.AvailabilityByName(c.Request.Context(), vendor, item)
	if err != nil {
		respondError(c, "checkAvailability", err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
