package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
)

type vendorPatch struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (a *api) listVendors(c *gin.Context) {
	vendors, err := a.store.ListVendors(c.Request.Context())
	if err != nil {
		respondError(c, "listVendors", err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (a *api) createVendor(c *gin.Context) {
	var input models.NewVendor
	if !bindJSON(c, "createVendor", &input) {
		return
	}
	vendor, err := a.store.CreateVendor(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createVendor", err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

// updateVendor keeps the stored value of any field the body leaves out.
func (a *api) updateVendor(c *gin.Context) {
	id, ok := pathId(c, "updateVendor", "vendor")
	if !ok {
		return
	}
	var patch vendorPatch
	if !bindJSON(c, "updateVendor", &patch) {
		return
	}
	ctx := c.Request.Context()
	current, err := a.store.GetVendor(ctx, id)
	if err != nil {
		respondError(c, "updateVendor", err)
		return
	}
	input := models.NewVendor{
		Name:    utils.DereferencePtr(patch.Name, current.Name),
		Phone:   utils.DereferencePtr(patch.Phone, current.Phone),
		Address: utils.DereferencePtr(patch.Address, current.Address),
	}
	if strings.TrimSpace(input.Name) == "" {
		input.Name = current.Name
	}
	vendor, err := a.store.UpdateVendor(ctx, id, &input)
	if err != nil {
		respondError(c, "updateVendor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor updated successfully", "vendor": vendor})
}

func (a *api) deleteVendor(c *gin.Context) {
	id, ok := pathId(c, "deleteVendor", "vendor")
	if !ok {
		return
	}
	vendor, err := a.store.DeleteVendor(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteVendor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Vendor %q deleted successfully", vendor.Name),
		"deletedVendor": gin.H{
			"id":      vendor.ID,
			"name":    vendor.Name,
			"phone":   vendor.Phone,
			"address": vendor.Address,
		},
	})
}

func (a *api) addVendorWire(c *gin.Context) {
	id, ok := pathId(c, "addVendorWire", "vendor")
	if !ok {
		return
	}
	var input models.NewWireAssignment
	if !bindJSON(c, "addVendorWire", &input) {
		return
	}
	vendor, err := a.store.AddVendorWire(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "addVendorWire", err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (a *api) removeVendorWire(c *gin.Context) {
	id, ok := pathId(c, "removeVendorWire", "vendor")
	if !ok {
		return
	}
	assignmentId, ok := pathId(c, "removeVendorWire", "assignmentId")
	if !ok {
		return
	}
	vendor, err := a.store.RemoveVendorWire(c.Request.Context(), id, assignmentId)
	if err != nil {
		respondError(c, "removeVendorWire", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wire assignment removed successfully", "vendor": vendor})
}

func (a *api) listItems(c *gin.Context) {
	items, err := a.store.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, "listItems", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *api) createItem(c *gin.Context) {
	var input models.NewItem
	if !bindJSON(c, "createItem", &input) {
		return
	}
	item, err := a.store.CreateItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createItem", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (a *api) deleteItem(c *gin.Context) {
	item, err := a.store.DeleteItemByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "deleteItem", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Item %q deleted successfully", item.Name)})
}

func (a *api) listVendorItemPrices(c *gin.Context) {
	prices, err := a.store.ListVendorItemPrices(c.Request.Context())
	if err != nil {
		respondError(c, "listVendorItemPrices", err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func (a *api) upsertVendorItemPrice(c *gin.Context) {
	var input models.NewVendorItemPrice
	if !bindJSON(c, "upsertVendorItemPrice", &input) {
		return
	}
	price, err := a.store.UpsertVendorItemPrice(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "upsertVendorItemPrice", err)
		return
	}
	c.JSON(http.StatusOK, price)
}

func (a *api) getVendorItemPrice(c *gin.Context) {
	vendor, item := c.Param("vendor"), c.Param("item")
	price, err := a.store.GetVendorItemPrice(c.Request.Context(), vendor, item)
	if err != nil {
		respondError(c, "getVendorItemPrice", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "item": item, "price": price.Price})
}

func (a *api) vendorSummary(c *gin.Context) {
	summary, err := a.store.VendorSummary(c.Request.Context(), c.Param("vendor"))
	if err != nil {
		respondError(c, "vendorSummary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *api) listVendorTransactions(c *gin.Context) {
	transactions, err := a.store.ListVendorTransactions(c.Request.Context(), c.Param("vendor"))
	if err != nil {
		respondError(c, "listVendorTransactions", err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (a *api) exportVendorTransactions(c *gin.Context) {
	vendor := c.Param("vendor")
	transactions, err := a.store.ListVendorTransactions(c.Request.Context(), vendor)
	if err != nil {
		respondError(c, "exportVendorTransactions", err)
		return
	}

	sheet := utils.Sheet{
		Name:    "Transactions",
		Headers: []string{"Sr No", "Type", "Item", "Payal Type", "Quantity", "Price", "Total", "Date"},
	}
	for _, t := range transactions {
		date := t.OutDate
		if t.Type == models.TransactionTypeIn {
			date = t.InDate
		}
		dateText := ""
		if date != nil {
			dateText = date.Format("2006-01-02")
		}
		sheet.Rows = append(sheet.Rows, []interface{}{
			t.SrNo,
			string(t.Type),
			t.ItemName,
			utils.DereferencePtr(t.PayalType),
			utils.DecimalToFloat(t.Quantity),
			utils.DecimalToFloat(t.PricePerUnit),
			utils.DecimalToFloat(t.TotalAmount),
			dateText,
		})
	}
	filename := utils.SanitizeSegment(vendor) + "-transactions.xlsx"
	writeWorkbook(c, "exportVendorTransactions", filename, sheet)
}

func (a *api) vendorPayables(c *gin.Context) {
	payables, err := a.store.VendorPayables(c.Request.Context(), c.Param("vendor"))
	if err != nil {
		respondError(c, "vendorPayables", err)
		return
	}
	c.JSON(http.StatusOK, payables)
}

func (a *api) resolveVendorPrice(c *gin.Context) {
	quote, err := a.store.ResolvePrice(c.Request.Context(), c.Param("vendor"), c.Query("wire"), c.Query("payalType"))
	if err != nil {
		respondError(c, "resolveVendorPrice", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// writeWorkbook renders the sheet fully before any byte is sent, so a
// rendering failure can still be answered with a JSON error.
func writeWorkbook(c *gin.Context, funcName string, filename string, sheet utils.Sheet) {
	var buf bytes.Buffer
	if err := utils.WriteWorkbook(&buf, sheet); err != nil {
		respondError(c, funcName, err)
		return
	}
	c.Header("Content-Disposition", attachmentDisposition(filename))
	c.Data(http.StatusOK, utils.ExcelContentType, buf.Bytes())
}
