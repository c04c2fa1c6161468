package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
)

func (a *api) listPayments(c *gin.Context) {
	a.respondPayments(c, "listPayments", models.PaymentFilter{})
}

func (a *api) listVendorPayments(c *gin.Context) {
	a.respondPayments(c, "listVendorPayments", models.PaymentFilter{VendorName: c.Param("vendorName")})
}

func (a *api) listVendorWirePayments(c *gin.Context) {
	a.respondPayments(c, "listVendorWirePayments", models.PaymentFilter{
		VendorName: c.Param("vendorName"),
		Wire:       c.Param("wireName"),
	})
}

func (a *api) respondPayments(c *gin.Context, funcName string, filter models.PaymentFilter) {
	payments, err := a.store.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (a *api) paymentStats(c *gin.Context) {
	stats, err := a.store.PaymentStats(c.Request.Context())
	if err != nil {
		respondError(c, "paymentStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *api) createPayment(c *gin.Context) {
	var input models.NewPayment
	if !bindJSON(c, "createPayment", &input) {
		return
	}
	payment, err := a.store.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createPayment", err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (a *api) updatePayment(c *gin.Context) {
	id, ok := pathId(c, "updatePayment", "id")
	if !ok {
		return
	}
	var patch models.PaymentPatch
	if !bindJSON(c, "updatePayment", &patch) {
		return
	}
	payment, err := a.store.UpdatePayment(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, "updatePayment", err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (a *api) deletePayment(c *gin.Context) {
	id, ok := pathId(c, "deletePayment", "id")
	if !ok {
		return
	}
	if _, err := a.store.DeletePayment(c.Request.Context(), id); err != nil {
		respondError(c, "deletePayment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
