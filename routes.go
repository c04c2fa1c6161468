package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, a *api) {
	r.GET("/api/health", healthHandler)
	r.GET("/api", healthHandler)

	items := r.Group("/api/items")
	{
		items.GET("/transactions", a.listTransactions)
		items.POST("/transactions", a.createTransaction)
		items.GET("/transactions/:type", a.listTransactionsByType)
		items.DELETE("/transactions/:id", a.deleteTransaction)
		items.GET("/inventory/available", a.listAvailableInventory)
		items.GET("/inventory/available/export", a.exportAvailableInventory)
		items.GET("/inventory/availability", a.checkAvailability)
	}

	// Read routes address the vendor by name, mutating routes by id.
	vendors := r.Group("/api/vendors")
	{
		vendors.GET("", a.listVendors)
		vendors.POST("", a.createVendor)
		vendors.GET("/items", a.listItems)
		vendors.POST("/items", a.createItem)
		vendors.DELETE("/items/:name", a.deleteItem)
		vendors.GET("/prices", a.listVendorItemPrices)
		vendors.POST("/prices", a.upsertVendorItemPrice)
		vendors.GET("/:vendor/items/:item/price", a.getVendorItemPrice)
		vendors.GET("/:vendor/summary", a.vendorSummary)
		vendors.GET("/:vendor/transactions", a.listVendorTransactions)
		vendors.GET("/:vendor/transactions/export", a.exportVendorTransactions)
		vendors.GET("/:vendor/payables", a.vendorPayables)
		vendors.GET("/:vendor/price", a.resolveVendorPrice)
		vendors.POST("/:vendor/wires", a.addVendorWire)
		vendors.DELETE("/:vendor/wires/:assignmentId", a.removeVendorWire)
		vendors.PUT("/:vendor", a.updateVendor)
		vendors.DELETE("/:vendor", a.deleteVendor)
	}

	chart := r.Group("/api/payal-price-chart")
	{
		chart.GET("", a.getPriceChart)
		chart.POST("", a.upsertPriceChartEntry)
		chart.POST("/seed", a.seedPriceChart)
		chart.GET("/:wireThickness/:payalType", a.getPriceChartEntry)
		chart.PUT("/:wireThickness/:payalType", a.updatePriceChartEntry)
		chart.DELETE("/:wireThickness/:payalType", a.deletePriceChartEntry)
		chart.DELETE("/wire/:wireThickness", a.deletePriceChartByThickness)
	}

	payments := r.Group("/api/payments")
	{
		payments.GET("", a.listPayments)
		payments.POST("", a.createPayment)
		payments.GET("/stats", a.paymentStats)
		payments.GET("/vendor/:vendorName", a.listVendorPayments)
		payments.GET("/vendor/:vendorName/wire/:wireName", a.listVendorWirePayments)
		payments.PUT("/:id", a.updatePayment)
		payments.DELETE("/:id", a.deletePayment)
	}

	printStatus := r.Group("/api/print-status")
	{
		printStatus.GET("", a.listPrintStatuses)
		printStatus.GET("/vendor/:vendorName", a.listVendorPrintStatuses)
		printStatus.POST("/mark-printed", a.markPagePrinted)
		printStatus.POST("/mark-printed-batch", a.markPagesPrinted)
		printStatus.DELETE("/clear/all", a.clearPrintStatuses)
		printStatus.DELETE("/clear/vendor/:vendorName", a.clearVendorPrintStatuses)
		printStatus.DELETE("/:vendorName/:pageNumber", a.unmarkPagePrinted)
	}

	records := r.Group("/api/vendor-transaction-records")
	{
		records.GET("", a.listVendorTransactionRecords)
		records.POST("", a.upsertVendorTransactionRecord)
		records.GET("/vendor/:vendorName", a.listVendorTransactionRecordsByVendor)
		records.POST("/:id/upload-pdf", a.uploadRecordPDF)
		records.POST("/:id/upload-image", a.uploadRecordImage)
		records.GET("/:id/download-pdf", a.downloadRecordPDF)
		records.GET("/:id/download-image", a.downloadRecordImage)
		records.GET("/:id/download-thumbnail", a.downloadRecordThumbnail)
		records.DELETE("/:id", a.deleteVendorTransactionRecord)
	}

	users := r.Group("/api/users")
	{
		users.GET("", a.listUsers)
		users.POST("", a.createUser)
		users.GET("/:id", a.getUser)
		users.PUT("/:id", a.updateUser)
		users.DELETE("/:id", a.deleteUser)
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "IN/OUT Management API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
