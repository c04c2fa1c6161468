package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/sirupsen/logrus"
)

func (a *api) listVendorTransactionRecords(c *gin.Context) {
	records, err := a.store.ListVendorTransactionRecords(c.Request.Context())
	if err != nil {
		respondError(c, "listVendorTransactionRecords", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (a *api) listVendorTransactionRecordsByVendor(c *gin.Context) {
	records, err := a.store.ListVendorTransactionRecordsByVendor(c.Request.Context(), c.Param("vendorName"))
	if err != nil {
		respondError(c, "listVendorTransactionRecordsByVendor", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (a *api) upsertVendorTransactionRecord(c *gin.Context) {
	var input models.NewVendorTransactionRecord
	if !bindJSON(c, "upsertVendorTransactionRecord", &input) {
		return
	}
	record, err := a.store.UpsertVendorTransactionRecord(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "upsertVendorTransactionRecord", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (a *api) deleteVendorTransactionRecord(c *gin.Context) {
	id, ok := pathId(c, "deleteVendorTransactionRecord", "id")
	if !ok {
		return
	}
	if _, err := a.store.DeleteVendorTransactionRecord(c.Request.Context(), id); err != nil {
		respondError(c, "deleteVendorTransactionRecord", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

func (a *api) uploadRecordPDF(c *gin.Context) {
	a.uploadRecordFile(c, models.AttachmentPDF, "pdf", "PDF uploaded successfully")
}

func (a *api) uploadRecordImage(c *gin.Context) {
	a.uploadRecordFile(c, models.AttachmentImage, "image", "Image uploaded successfully")
}

// uploadRecordFile reads the multipart field fully, bounded by the upload
// limit, and hands it to the store, which owns type checks and blob cleanup.
func (a *api) uploadRecordFile(c *gin.Context, kind models.AttachmentKind, field string, message string) {
	funcName := "uploadRecordFile"
	id, ok := pathId(c, funcName, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxUploadSizeBytes+1<<20)
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, funcName, utils.NewValidationError(field, "No file uploaded"))
		return
	}
	if header.Size > utils.MaxUploadSizeBytes {
		respondError(c, funcName, utils.NewValidationError(field, "file size exceeds 10MB limit"))
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	data, err := utils.ReadUpload(file, utils.MaxUploadSizeBytes)
	file.Close()
	if err != nil {
		respondError(c, funcName, err)
		return
	}

	record, err := a.store.AttachVendorRecordFile(c.Request.Context(), id, kind, header.Filename, data)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	a.logger.WithFields(logrus.Fields{
		"record_id": id,
		"kind":      kind,
		"size":      len(data),
	}).Info("[upload.complete]")
	c.JSON(http.StatusOK, gin.H{"message": message, "record": record})
}

func (a *api) downloadRecordPDF(c *gin.Context) {
	a.downloadRecordFile(c, models.AttachmentPDF, false)
}

func (a *api) downloadRecordImage(c *gin.Context) {
	a.downloadRecordFile(c, models.AttachmentImage, false)
}

func (a *api) downloadRecordThumbnail(c *gin.Context) {
	a.downloadRecordFile(c, models.AttachmentImage, true)
}

// downloadRecordFile streams the blob; the handle is closed on every path.
func (a *api) downloadRecordFile(c *gin.Context, kind models.AttachmentKind, thumbnail bool) {
	funcName := "downloadRecordFile"
	id, ok := pathId(c, funcName, "id")
	if !ok {
		return
	}
	file, err := a.store.OpenVendorRecordFile(c.Request.Context(), id, kind, thumbnail)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	defer file.Body.Close()

	contentType := file.Info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, file.Info.Size, contentType, file.Body, map[string]string{
		"Content-Disposition": attachmentDisposition(file.Filename),
	})
}
