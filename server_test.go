package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, *models.Store) {
	t.Helper()
	db, err := config.OpenDatabase("sqlite://"+filepath.Join(t.TempDir(), "inout.db"), 1, 1)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	blobs, err := utils.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	store := models.NewStore(db, models.WithBlobStorage(blobs))
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var ready atomic.Bool
	ready.Store(true)
	r := newRouter(&api{store: store, logger: config.GetLogger()}, config.Config{}, &ready)
	return r, store
}

func do(t *testing.T, r http.Handler, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

// expectDecimal compares a JSON decimal (string or number) with want.
func expectDecimal(t *testing.T, label string, value interface{}, want int64) {
	t.Helper()
	var d decimal.Decimal
	var err error
	switch v := value.(type) {
	case string:
		d, err = decimal.NewFromString(v)
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		t.Fatalf("%s: unexpected value %#v", label, value)
	}
	if err != nil {
		t.Fatalf("%s: %v", label, err)
	}
	if !d.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s: expected %d, got %s", label, want, d)
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	r, _ := newTestServer(t)

	for _, path := range []string{"/api/health", "/api"} {
		w := do(t, r, http.MethodGet, path, nil)
		expectStatus(t, w, http.StatusOK)
		body := decodeObject(t, w)
		if body["status"] != "OK" || body["message"] != "IN/OUT Management API is running" || body["timestamp"] == "" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}

	w := do(t, r, http.MethodGet, "/api/nothing-here", nil)
	expectStatus(t, w, http.StatusNotFound)
	if decodeObject(t, w)["error"] != "Route not found" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestVendorRoutes(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "  Anuj  ", "phone": "9876543210"})
	expectStatus(t, w, http.StatusCreated)
	vendor := decodeObject(t, w)
	if vendor["name"] != "Anuj" {
		t.Fatalf("expected trimmed name, got %v", vendor["name"])
	}
	id := int(vendor["id"].(float64))

	w = do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "Anuj"})
	expectStatus(t, w, http.StatusConflict)

	w = do(t, r, http.MethodPost, "/api/vendors", gin.H{"phone": "1"})
	expectStatus(t, w, http.StatusBadRequest)

	w = do(t, r, http.MethodPost, "/api/vendors/"+itoa(id)+"/wires", gin.H{"wireName": "22mm", "payalType": "Golden", "pricePerKg": 380})
	expectStatus(t, w, http.StatusOK)
	wires := decodeObject(t, w)["assignedWires"].([]interface{})
	if len(wires) != 1 {
		t.Fatalf("expected one wire assignment, got %v", wires)
	}
	assignmentId := int(wires[0].(map[string]interface{})["id"].(float64))

	w = do(t, r, http.MethodGet, "/api/vendors/Anuj/price?wire=22mm&payalType=Golden", nil)
	expectStatus(t, w, http.StatusOK)
	quote := decodeObject(t, w)
	expectDecimal(t, "vendor price", quote["price"], 380)
	if quote["source"] != "vendor" {
		t.Fatalf("expected vendor source, got %v", quote["source"])
	}

	w = do(t, r, http.MethodPut, "/api/vendors/"+itoa(id), gin.H{"address": "Delhi"})
	expectStatus(t, w, http.StatusOK)
	updated := decodeObject(t, w)["vendor"].(map[string]interface{})
	if updated["name"] != "Anuj" || updated["phone"] != "9876543210" || updated["address"] != "Delhi" {
		t.Fatalf("partial update lost fields: %v", updated)
	}

	w = do(t, r, http.MethodDelete, "/api/vendors/"+itoa(id)+"/wires/"+itoa(assignmentId), nil)
	expectStatus(t, w, http.StatusOK)
	w = do(t, r, http.MethodDelete, "/api/vendors/"+itoa(id)+"/wires/"+itoa(assignmentId), nil)
	expectStatus(t, w, http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/vendors/nobody/summary", nil)
	expectStatus(t, w, http.StatusNotFound)

	w = do(t, r, http.MethodDelete, "/api/vendors/"+itoa(id), nil)
	expectStatus(t, w, http.StatusOK)
	if msg := decodeObject(t, w)["message"]; msg != `Vendor "Anuj" deleted successfully` {
		t.Fatalf("unexpected message %v", msg)
	}
	w = do(t, r, http.MethodDelete, "/api/vendors/abc", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestTransactionRoutes_AdmissionAndAvailability(t *testing.T) {
	r, _ := newTestServer(t)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "Rajesh"}), http.StatusCreated)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors/items", gin.H{"name": "22mm"}), http.StatusCreated)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors/items", gin.H{"name": "28mm"}), http.StatusCreated)

	in := func(item string, qty int) *httptest.ResponseRecorder {
		return do(t, r, http.MethodPost, "/api/items/transactions", gin.H{
			"type": "IN", "vendor": "Rajesh", "item": item, "qty": qty,
			"price": 110, "payalType": "Moorni", "inDate": "2024-01-18",
		})
	}

	w := in("28mm", 1)
	expectStatus(t, w, http.StatusBadRequest)
	if msg := decodeObject(t, w)["error"]; msg != "Item not available for import. Please export it first." {
		t.Fatalf("unexpected message %v", msg)
	}

	w = do(t, r, http.MethodPost, "/api/items/transactions", gin.H{
		"type": "OUT", "vendor": "Rajesh", "item": "22mm", "qty": 50, "outDate": "2024-01-10", "total": 999,
	})
	expectStatus(t, w, http.StatusCreated)
	out := decodeObject(t, w)
	expectDecimal(t, "OUT total", out["total"], 0)
	if out["srNo"].(float64) != 1 || out["vendor"] != "Rajesh" || out["item"] != "22mm" {
		t.Fatalf("unexpected OUT transaction %v", out)
	}

	expectStatus(t, in("22mm", 30), http.StatusCreated)

	w = do(t, r, http.MethodGet, "/api/items/inventory/availability?vendor=Rajesh&item=22mm", nil)
	expectStatus(t, w, http.StatusOK)
	expectDecimal(t, "available", decodeObject(t, w)["available"], 20)

	w = in("22mm", 25)
	expectStatus(t, w, http.StatusBadRequest)
	if msg := decodeObject(t, w)["error"]; msg != "Only 20 units available. You requested 25 units." {
		t.Fatalf("unexpected message %v", msg)
	}

	w = in("22mm", 20)
	expectStatus(t, w, http.StatusCreated)
	created := decodeObject(t, w)
	expectDecimal(t, "IN total", created["total"], 2200)
	createdId := int(created["id"].(float64))

	w = do(t, r, http.MethodGet, "/api/items/inventory/available", nil)
	expectStatus(t, w, http.StatusOK)
	if rows := decodeList(t, w); len(rows) != 0 {
		t.Fatalf("settled pair should be hidden, got %v", rows)
	}

	w = do(t, r, http.MethodGet, "/api/items/transactions/IN", nil)
	expectStatus(t, w, http.StatusOK)
	if rows := decodeList(t, w); len(rows) != 2 {
		t.Fatalf("expected 2 IN transactions, got %d", len(rows))
	}
	w = do(t, r, http.MethodGet, "/api/items/transactions/in", nil)
	expectStatus(t, w, http.StatusOK)
	if rows := decodeList(t, w); len(rows) != 2 {
		t.Fatalf("lowercase type: expected 2 IN transactions, got %d", len(rows))
	}
	expectStatus(t, do(t, r, http.MethodGet, "/api/items/transactions/SIDEWAYS", nil), http.StatusBadRequest)

	expectStatus(t, do(t, r, http.MethodDelete, "/api/items/transactions/"+itoa(createdId), nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodDelete, "/api/items/transactions/"+itoa(createdId), nil), http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/items/inventory/available", nil)
	rows := decodeList(t, w)
	if len(rows) != 1 || rows[0]["vendor"] != "Rajesh" {
		t.Fatalf("expected Rajesh/22mm back in the view, got %v", rows)
	}
	expectDecimal(t, "available after delete", rows[0]["available"], 20)

	w = do(t, r, http.MethodGet, "/api/items/inventory/availability?vendor=Rajesh", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestDeleteVendor_BlockedByTransactions(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "Priya"})
	id := int(decodeObject(t, w)["id"].(float64))
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors/items", gin.H{"name": "28mm"}), http.StatusCreated)
	expectStatus(t, do(t, r, http.MethodPost, "/api/items/transactions", gin.H{
		"type": "OUT", "vendor": "Priya", "item": "28mm", "qty": 15,
	}), http.StatusCreated)

	w = do(t, r, http.MethodDelete, "/api/vendors/"+itoa(id), nil)
	expectStatus(t, w, http.StatusBadRequest)
	msg, _ := decodeObject(t, w)["error"].(string)
	if !strings.Contains(msg, `Cannot delete vendor "Priya" because they have 1 transaction(s)`) {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestPriceChartRoutes(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/payal-price-chart/seed", nil)
	expectStatus(t, w, http.StatusOK)
	expectDecimal(t, "seed count", decodeObject(t, w)["count"], 16)

	w = do(t, r, http.MethodGet, "/api/payal-price-chart/22mm/Golden", nil)
	expectStatus(t, w, http.StatusOK)
	expectDecimal(t, "22mm Golden", decodeObject(t, w)["pricePerKg"], 350)

	w = do(t, r, http.MethodPut, "/api/payal-price-chart/22mm/Golden", gin.H{"pricePerKg": 400})
	expectStatus(t, w, http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/payal-price-chart", nil)
	expectStatus(t, w, http.StatusOK)
	chart := decodeObject(t, w)
	expectDecimal(t, "chart 22mm Golden", chart["22mm"].(map[string]interface{})["Golden"], 400)

	w = do(t, r, http.MethodPost, "/api/payal-price-chart", gin.H{"wireThickness": "40mm", "payalType": "Golden", "pricePerKg": 1})
	expectStatus(t, w, http.StatusBadRequest)

	w = do(t, r, http.MethodDelete, "/api/payal-price-chart/wire/32mm", nil)
	expectStatus(t, w, http.StatusOK)
	expectDecimal(t, "deleted", decodeObject(t, w)["deletedCount"], 4)
	expectStatus(t, do(t, r, http.MethodDelete, "/api/payal-price-chart/wire/32mm", nil), http.StatusNotFound)

	expectStatus(t, do(t, r, http.MethodDelete, "/api/payal-price-chart/28mm/Silver", nil), http.StatusOK)
	w = do(t, r, http.MethodGet, "/api/payal-price-chart/28mm/Silver", nil)
	expectStatus(t, w, http.StatusNotFound)
	if msg := decodeObject(t, w)["error"]; msg != "Price not found for this combination" {
		t.Fatalf("unexpected message %v", msg)
	}
}

func TestPaymentAndPrintStatusRoutes(t *testing.T) {
	r, _ := newTestServer(t)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "Anuj"}), http.StatusCreated)

	w := do(t, r, http.MethodPost, "/api/payments", gin.H{
		"vendor": "Anuj", "wire": "22mm", "payalType": "Golden", "amount": 0, "date": "2024-01-30",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = do(t, r, http.MethodPost, "/api/payments", gin.H{
		"vendor": "Anuj", "wire": "22mm", "payalType": "Golden", "amount": 2000, "date": "2024-01-30",
	})
	expectStatus(t, w, http.StatusCreated)
	paymentId := int(decodeObject(t, w)["id"].(float64))

	w = do(t, r, http.MethodGet, "/api/payments/vendor/Anuj/wire/22mm", nil)
	expectStatus(t, w, http.StatusOK)
	if rows := decodeList(t, w); len(rows) != 1 || rows[0]["vendor"] != "Anuj" {
		t.Fatalf("unexpected payments %v", rows)
	}
	expectStatus(t, do(t, r, http.MethodGet, "/api/payments/vendor/ghost", nil), http.StatusNotFound)

	w = do(t, r, http.MethodGet, "/api/payments/stats", nil)
	expectStatus(t, w, http.StatusOK)
	stats := decodeObject(t, w)
	expectDecimal(t, "stats total", stats["totalAmount"], 2000)

	expectStatus(t, do(t, r, http.MethodPut, "/api/payments/"+itoa(paymentId), gin.H{"notes": "cash"}), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodDelete, "/api/payments/"+itoa(paymentId), nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodDelete, "/api/payments/"+itoa(paymentId), nil), http.StatusNotFound)

	expectStatus(t, do(t, r, http.MethodPost, "/api/print-status/mark-printed", gin.H{"vendorName": "Anuj"}), http.StatusBadRequest)
	expectStatus(t, do(t, r, http.MethodPost, "/api/print-status/mark-printed", gin.H{"vendorName": "Anuj", "pageNumber": 1}), http.StatusCreated)

	w = do(t, r, http.MethodPost, "/api/print-status/mark-printed-batch", gin.H{"pages": []gin.H{
		{"vendorName": "Anuj", "pageNumber": 1},
		{"vendorName": "Anuj", "pageNumber": 2},
	}})
	expectStatus(t, w, http.StatusCreated)
	batch := decodeObject(t, w)
	expectDecimal(t, "modified", batch["modifiedCount"], 1)
	expectDecimal(t, "upserted", batch["upsertedCount"], 1)

	expectStatus(t, do(t, r, http.MethodDelete, "/api/print-status/Anuj/2", nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodDelete, "/api/print-status/Anuj/2", nil), http.StatusNotFound)

	w = do(t, r, http.MethodDelete, "/api/print-status/clear/vendor/Anuj", nil)
	expectStatus(t, w, http.StatusOK)
	expectDecimal(t, "cleared", decodeObject(t, w)["deletedCount"], 1)
}

func TestUserRoutes_Envelope(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/users", gin.H{
		"vendorName": "A", "itemName": "22mm", "phone": "12", "address": "x",
	})
	expectStatus(t, w, http.StatusBadRequest)
	if details, ok := decodeObject(t, w)["details"].(map[string]interface{}); !ok || len(details) == 0 {
		t.Fatalf("expected field details, got %s", w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/users", gin.H{
		"vendorName": "Anuj Kumar", "itemName": "22mm", "phone": "9876543210", "address": "Delhi NCR",
	})
	expectStatus(t, w, http.StatusCreated)
	created := decodeObject(t, w)
	if created["success"] != true {
		t.Fatalf("unexpected body %v", created)
	}
	id := int(created["data"].(map[string]interface{})["id"].(float64))

	w = do(t, r, http.MethodGet, "/api/users", nil)
	expectStatus(t, w, http.StatusOK)
	list := decodeObject(t, w)
	expectDecimal(t, "count", list["count"], 1)

	expectStatus(t, do(t, r, http.MethodDelete, "/api/users/"+itoa(id), nil), http.StatusOK)
	w = do(t, r, http.MethodGet, "/api/users", nil)
	expectDecimal(t, "count after delete", decodeObject(t, w)["count"], 0)

	// the vendor and item were registered alongside the user
	w = do(t, r, http.MethodGet, "/api/vendors", nil)
	if rows := decodeList(t, w); len(rows) != 1 || rows[0]["name"] != "Anuj Kumar" {
		t.Fatalf("expected registered vendor, got %v", rows)
	}
}

func multipartBody(t *testing.T, field string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestVendorTransactionRecordRoutes_UploadDownload(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/vendor-transaction-records", gin.H{"vendor": "Anuj", "wire": "22mm", "qtyOut": 25})
	expectStatus(t, w, http.StatusCreated)
	record := decodeObject(t, w)
	if record["design"] != "N/A" {
		t.Fatalf("expected default design, got %v", record["design"])
	}
	id := itoa(int(record["id"].(float64)))

	w = do(t, r, http.MethodGet, "/api/vendor-transaction-records/"+id+"/download-pdf", nil)
	expectStatus(t, w, http.StatusNotFound)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	body, contentType := multipartBody(t, "pdf", "statement.pdf", pdf)
	req := httptest.NewRequest(http.MethodPost, "/api/vendor-transaction-records/"+id+"/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
	if msg := decodeObject(t, w)["message"]; msg != "PDF uploaded successfully" {
		t.Fatalf("unexpected message %v", msg)
	}

	w = do(t, r, http.MethodGet, "/api/vendor-transaction-records/"+id+"/download-pdf", nil)
	expectStatus(t, w, http.StatusOK)
	if !bytes.Equal(w.Body.Bytes(), pdf) {
		t.Fatalf("downloaded bytes differ from upload")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "statement.pdf") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	// a PDF sent as the image is rejected by content sniffing
	body, contentType = multipartBody(t, "image", "photo.png", pdf)
	req = httptest.NewRequest(http.MethodPost, "/api/vendor-transaction-records/"+id+"/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusBadRequest)

	body, contentType = multipartBody(t, "wrong-field", "statement.pdf", pdf)
	req = httptest.NewRequest(http.MethodPost, "/api/vendor-transaction-records/"+id+"/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusBadRequest)
	if msg := decodeObject(t, w)["error"]; msg != "No file uploaded" {
		t.Fatalf("unexpected message %v", msg)
	}

	expectStatus(t, do(t, r, http.MethodDelete, "/api/vendor-transaction-records/"+id, nil), http.StatusOK)
	expectStatus(t, do(t, r, http.MethodGet, "/api/vendor-transaction-records/"+id+"/download-pdf", nil), http.StatusNotFound)
}

func TestExportAvailableInventory(t *testing.T) {
	r, _ := newTestServer(t)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors", gin.H{"name": "Anuj"}), http.StatusCreated)
	expectStatus(t, do(t, r, http.MethodPost, "/api/vendors/items", gin.H{"name": "22mm"}), http.StatusCreated)
	expectStatus(t, do(t, r, http.MethodPost, "/api/items/transactions", gin.H{
		"type": "OUT", "vendor": "Anuj", "item": "22mm", "qty": 25,
	}), http.StatusCreated)

	w := do(t, r, http.MethodGet, "/api/items/inventory/available/export", nil)
	expectStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != utils.ExcelContentType {
		t.Fatalf("unexpected content type %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Available Inventory")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Anuj" || rows[1][1] != "22mm" || rows[1][4] != "25" {
		t.Fatalf("unexpected rows %v", rows)
	}

	w = do(t, r, http.MethodGet, "/api/vendors/Anuj/transactions/export", nil)
	expectStatus(t, w, http.StatusOK)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "anuj-transactions.xlsx") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestServeInBackground_CancelsStartupWhenListenFails(t *testing.T) {
	listenErr := errors.New("listen tcp :4003: bind: address already in use")
	ctx, errCh := serveInBackground(context.Background(), func() error { return listenErr })

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("startup context was not cancelled after the listener failed")
	}
	if cause := context.Cause(ctx); !errors.Is(cause, listenErr) {
		t.Fatalf("expected listen error as cause, got %v", cause)
	}
	if err := <-errCh; !errors.Is(err, listenErr) {
		t.Fatalf("expected listen error on channel, got %v", err)
	}

	_, _, err := openStore(ctx, config.Config{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "inout.db")}, config.GetLogger())
	if err == nil {
		t.Fatal("expected openStore to stop on a cancelled startup context")
	}
}

func TestOpenStore_UnsupportedStorageProvider(t *testing.T) {
	cfg := config.Config{
		DatabaseURL:     "sqlite://" + filepath.Join(t.TempDir(), "inout.db"),
		DBMaxOpenConns:  1,
		DBMaxIdleConns:  1,
		StorageProvider: "ftp",
	}
	store, rdb, err := openStore(context.Background(), cfg, config.GetLogger())
	if err == nil || !strings.Contains(err.Error(), `unsupported storage provider "ftp"`) {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
	if store != nil || rdb != nil {
		t.Fatalf("expected no handles on failure, got store=%v rdb=%v", store, rdb)
	}
}
