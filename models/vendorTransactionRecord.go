package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	recordObjectPrefix = "vendor-transaction-records"
	thumbnailWidth     = 200
)

// VendorTransactionRecord is the printed per-(vendor, wire) statement line,
// optionally with a scanned PDF and a photo attached.
type VendorTransactionRecord struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Vendor       string          `gorm:"size:100;not null;uniqueIndex:idx_record_vendor_wire" json:"vendor"`
	Wire         string          `gorm:"size:50;not null;uniqueIndex:idx_record_vendor_wire" json:"wire"`
	Design       string          `gorm:"size:100;not null;default:N/A" json:"design"`
	PayablePrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"payablePrice"`
	QtyOut       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"qtyOut"`
	QtyIn        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"qtyIn"`
	Date         time.Time       `gorm:"index" json:"date"`
	PdfFile      *string         `gorm:"size:255" json:"pdfFile"`
	PdfPath      *string         `gorm:"size:255" json:"pdfPath"`
	ImgFile      *string         `gorm:"size:255" json:"imgFile"`
	ImgPath      *string         `gorm:"size:255" json:"imgPath"`
	ImgThumbPath *string         `gorm:"size:255" json:"imgThumbPath"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NewVendorTransactionRecord creates a record, or updates the fields that are
// set when the (vendor, wire) record already exists.
type NewVendorTransactionRecord struct {
	Vendor       string           `json:"vendor"`
	Wire         string           `json:"wire"`
	Design       string           `json:"design"`
	PayablePrice *decimal.Decimal `json:"payablePrice"`
	QtyOut       *decimal.Decimal `json:"qtyOut"`
	QtyIn        *decimal.Decimal `json:"qtyIn"`
	Date         *DateInput       `json:"date"`
}

// RecordFile is a stored attachment ready to be streamed back.
type RecordFile struct {
	Filename string
	Info     *utils.BlobInfo
	Body     io.ReadCloser
}

func (r *VendorTransactionRecord) attachmentKeys(kind AttachmentKind) []string {
	var keys []string
	switch kind {
	case AttachmentPDF:
		keys = append(keys, utils.DereferencePtr(r.PdfPath))
	case AttachmentImage:
		keys = append(keys, utils.DereferencePtr(r.ImgPath), utils.DereferencePtr(r.ImgThumbPath))
	}
	return keys
}

func (input *NewVendorTransactionRecord) validate() error {
	input.Vendor = strings.TrimSpace(input.Vendor)
	input.Wire = strings.TrimSpace(input.Wire)
	input.Design = strings.TrimSpace(input.Design)
	if input.Vendor == "" || input.Wire == "" {
		return utils.NewValidationError("", "Vendor and wire are required")
	}
	return nil
}

func (s *Store) ListVendorTransactionRecords(ctx context.Context) ([]*VendorTransactionRecord, error) {
	var results []*VendorTransactionRecord
	if err := s.db.WithContext(ctx).Order("date, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListVendorTransactionRecordsByVendor(ctx context.Context, vendorName string) ([]*VendorTransactionRecord, error) {
	var results []*VendorTransactionRecord
	err := s.db.WithContext(ctx).Where("vendor = ?", vendorName).Order("date, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) GetVendorTransactionRecord(ctx context.Context, id int) (*VendorTransactionRecord, error) {
	return fetchModel[VendorTransactionRecord](ctx, s.db, id, "Record not found")
}

func (s *Store) UpsertVendorTransactionRecord(ctx context.Context, input *NewVendorTransactionRecord) (*VendorTransactionRecord, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var record VendorTransactionRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.forUpdate(tx).Where("vendor = ? AND wire = ?", input.Vendor, input.Wire).Take(&record).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err != nil {
			record = VendorTransactionRecord{
				Vendor:       input.Vendor,
				Wire:         input.Wire,
				Design:       "N/A",
				PayablePrice: utils.DereferencePtr(input.PayablePrice, decimal.Zero),
				QtyOut:       utils.DereferencePtr(input.QtyOut, decimal.Zero),
				QtyIn:        utils.DereferencePtr(input.QtyIn, decimal.Zero),
				Date:         utils.TimeOrNow(input.Date.Ptr()),
			}
			if input.Design != "" {
				record.Design = input.Design
			}
			return tx.Create(&record).Error
		}

		if input.Design != "" {
			record.Design = input.Design
		}
		if input.PayablePrice != nil {
			record.PayablePrice = *input.PayablePrice
		}
		if input.QtyOut != nil {
			record.QtyOut = *input.QtyOut
		}
		if input.QtyIn != nil {
			record.QtyIn = *input.QtyIn
		}
		if date := input.Date.Ptr(); date != nil {
			record.Date = *date
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "Record already exists", "")
	}
	return &record, nil
}

// AttachVendorRecordFile stores an uploaded PDF or image for the record and
// replaces whatever was attached before. Images also get a thumbnail.
func (s *Store) AttachVendorRecordFile(ctx context.Context, id int, kind AttachmentKind, filename string, data []byte) (*VendorTransactionRecord, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("blob storage is not configured")
	}
	record, err := s.GetVendorTransactionRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := utils.PDFMimeTypes
	if kind == AttachmentImage {
		allowed = utils.ImageMimeTypes
	}
	contentType, ext, err := utils.DetectAllowedType(data, allowed)
	if err != nil {
		return nil, err
	}

	var thumbnail []byte
	if kind == AttachmentImage {
		if thumbnail, err = utils.MakeThumbnail(data, thumbnailWidth); err != nil {
			return nil, utils.NewValidationError("file", "image could not be decoded")
		}
	}

	objectKey := path.Join(recordObjectPrefix, fmt.Sprint(id), string(kind)+"-"+uuid.New().String()+ext)
	written := []string{}
	if err := s.blobs.Put(ctx, objectKey, bytes.NewReader(data), contentType); err != nil {
		return nil, err
	}
	written = append(written, objectKey)

	var thumbKey string
	if thumbnail != nil {
		thumbKey = utils.ThumbnailObjectKey(objectKey)
		if err := s.blobs.Put(ctx, thumbKey, bytes.NewReader(thumbnail), "image/jpeg"); err != nil {
			s.removeBlobs(ctx, written)
			return nil, err
		}
		written = append(written, thumbKey)
	}

	previous := record.attachmentKeys(kind)
	name := strings.TrimSpace(path.Base(filename))
	if name == "" || name == "." || name == "/" {
		name = string(kind) + ext
	}

	updates := map[string]interface{}{}
	switch kind {
	case AttachmentPDF:
		updates["pdf_file"] = name
		updates["pdf_path"] = objectKey
	case AttachmentImage:
		updates["img_file"] = name
		updates["img_path"] = objectKey
		updates["img_thumb_path"] = thumbKey
	}
	if err := s.db.WithContext(ctx).Model(&VendorTransactionRecord{ID: id}).Updates(updates).Error; err != nil {
		s.removeBlobs(ctx, written)
		return nil, err
	}

	s.removeBlobs(ctx, previous)
	s.logger.WithFields(logrus.Fields{
		"record_id":  id,
		"kind":       kind,
		"object_key": objectKey,
	}).Info("[record.attach]")
	return s.GetVendorTransactionRecord(ctx, id)
}

// OpenVendorRecordFile opens the attachment of kind, or its thumbnail.
// The caller closes Body.
func (s *Store) OpenVendorRecordFile(ctx context.Context, id int, kind AttachmentKind, thumbnail bool) (*RecordFile, error) {
	notFound := "PDF file not found"
	if kind == AttachmentImage {
		notFound = "Image file not found"
	}
	record, err := s.GetVendorTransactionRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	var key, filename string
	switch {
	case kind == AttachmentPDF:
		key, filename = utils.DereferencePtr(record.PdfPath), utils.DereferencePtr(record.PdfFile)
	case thumbnail:
		key = utils.DereferencePtr(record.ImgThumbPath)
		filename = "thumb-" + strings.TrimSuffix(utils.DereferencePtr(record.ImgFile), path.Ext(utils.DereferencePtr(record.ImgFile))) + ".jpg"
	default:
		key, filename = utils.DereferencePtr(record.ImgPath), utils.DereferencePtr(record.ImgFile)
	}
	if key == "" || s.blobs == nil {
		return nil, utils.NewNotFoundError(notFound)
	}

	body, info, err := s.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError(notFound + " on server")
		}
		return nil, err
	}
	return &RecordFile{Filename: filename, Info: info, Body: body}, nil
}

// DeleteVendorTransactionRecord removes the record, then its attachments.
// Blob removal failures are logged and do not fail the delete.
func (s *Store) DeleteVendorTransactionRecord(ctx context.Context, id int) (*VendorTransactionRecord, error) {
	record, err := s.GetVendorTransactionRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&VendorTransactionRecord{}, id).Error; err != nil {
		return nil, err
	}
	keys := append(record.attachmentKeys(AttachmentPDF), record.attachmentKeys(AttachmentImage)...)
	s.removeBlobs(ctx, keys)
	return record, nil
}

func (s *Store) removeBlobs(ctx context.Context, keys []string) {
	if s.blobs == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			config.LogError(s.logger, "VendorTransactionRecord", "removeBlobs", "delete blob", key, err)
		}
	}
}
