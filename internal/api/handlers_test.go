package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret      = "rzp_test_secret"
	testAdminSecret = "let-me-in"
)

type stubGateway struct {
	order *services.GatewayOrder
	err   error
}

func (g *stubGateway) CreateOrder(ctx context.Context, req services.GatewayOrderRequest) (*services.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.order, nil
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	gateway *stubGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	gateway := &stubGateway{order: &services.GatewayOrder{ID: "O1", Amount: 19900, Currency: "INR"}}
	h := &Handlers{
		Purchases:   services.NewPurchaseServiceWith(db, gateway, testSecret, "INR", nil),
		Catalog:     services.NewCatalogServiceWith(db, nil, nil, 0),
		Leads:       services.NewLeadServiceWith(db),
		Admins:      services.NewAdminServiceWith(db, nil, "jwt-secret", testAdminSecret, time.Hour),
		MaxUploadMB: 1,
	}

	r := gin.New()
	SetupRoutes(r, h)
	return &testServer{router: r, db: db, gateway: gateway}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/admin/register", gin.H{
		"email": "owner@example.com", "password": "correct horse", "adminSecret": testAdminSecret,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/admin/login", gin.H{"email": "owner@example.com", "password": "correct horse"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data services.AdminSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/payment/order", gin.H{
		"notes_id": "N1", "amount": 199, "customer_email": "asha@example.com", "customer_name": "Asha",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "O1", resp["orderId"])
	assert.Equal(t, float64(19900), resp["amount"])
	assert.Equal(t, "INR", resp["currency"])

	w = s.do(http.MethodPost, "/api/payment/order", gin.H{"notes_id": "N1", "amount": 199}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, errorMessage(t, w))

	w = s.do(http.MethodPost, "/api/payment/order", gin.H{
		"notes_id": "N1", "amount": 199, "customer_email": "not-an-email", "customer_name": "Asha",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	s := newTestServer(t)
	s.gateway.err = errors.New("connection refused")

	w := s.do(http.MethodPost, "/api/payment/order", gin.H{
		"notes_id": "N1", "amount": 199, "customer_email": "asha@example.com", "customer_name": "Asha",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to create order", errorMessage(t, w))
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	s := newTestServer(t)
	note := &models.Note{University: "U", Course: "C", Subject: "S", Title: "T", DownloadURL: "https://cdn.example.com/n1.pdf"}
	require.NoError(t, s.db.Create(note).Error)
	require.NoError(t, s.db.Create(&models.Purchase{
		NotesID: note.ID, CustomerEmail: "a@b.co", CustomerName: "A", Amount: 199,
		RazorpayOrderID: "O1", Status: models.PurchaseStatusPending,
	}).Error)

	body := gin.H{
		"razorpay_payment_id": "P1",
		"razorpay_order_id":   "O1",
		"razorpay_signature":  "deadbeef",
		"notes_id":            note.ID,
	}
	w := s.do(http.MethodPost, "/api/payment/verify", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Payment verification failed", errorMessage(t, w))

	body["razorpay_signature"] = services.GeneratePaymentSignature("O1", "P1", testSecret)
	w = s.do(http.MethodPost, "/api/payment/verify", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example.com/n1.pdf", resp.DownloadURL)

	body["notes_id"] = "missing"
	w = s.do(http.MethodPost, "/api/payment/verify", body, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/payment/downloaded", gin.H{"razorpay_order_id": "O1", "razorpay_payment_id": "P1"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAccounts(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/admin/register", gin.H{
		"email": "owner@example.com", "password": "correct horse", "adminSecret": "wrong",
	}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	token := s.adminToken(t)
	assert.NotEmpty(t, token)

	w = s.do(http.MethodPost, "/api/admin/register", gin.H{
		"email": "owner@example.com", "password": "correct horse", "adminSecret": testAdminSecret,
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/admin/login", gin.H{"email": "owner@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/admin/delete", gin.H{"email": "owner@example.com", "adminSecret": testAdminSecret}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/admin/delete", gin.H{"email": "owner@example.com", "adminSecret": testAdminSecret}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardRequiresSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/admin/purchases", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/admin/purchases", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.adminToken(t)
	w = s.do(http.MethodGet, "/api/admin/purchases", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// browser clients send the cookie instead of a bearer header
	req := httptest.NewRequest(http.MethodGet, "/api/admin/purchases", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: token})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = s.do(http.MethodPost, "/api/admin/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdatePurchaseEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	purchase := &models.Purchase{
		NotesID: "n", CustomerEmail: "a@b.co", CustomerName: "A", Amount: 10,
		RazorpayOrderID: "O9", Status: models.PurchaseStatusPending,
	}
	require.NoError(t, s.db.Create(purchase).Error)

	w := s.do(http.MethodPut, "/api/admin/purchases", gin.H{"purchaseId": purchase.ID, "status": "refunded"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/admin/purchases", gin.H{"purchaseId": purchase.ID, "status": "completed"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/admin/purchases", gin.H{"purchaseId": purchase.ID, "status": "failed", "markDownloaded": true}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []models.Purchase `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, models.PurchaseStatusFailed, resp.Data[0].Status)
	assert.NotNil(t, resp.Data[0].DownloadMarkedAt)

	w = s.do(http.MethodPut, "/api/admin/purchases", gin.H{"purchaseId": "missing", "status": "failed"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesReportAndExport(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	paymentID := "pay_1"
	require.NoError(t, s.db.Create(&models.Purchase{
		NotesID: "n", CustomerEmail: "a@b.co", CustomerName: "Asha", Amount: 199,
		RazorpayOrderID: "O1", RazorpayPaymentID: &paymentID, Status: models.PurchaseStatusCompleted,
	}).Error)
	require.NoError(t, s.db.Create(&models.Purchase{
		NotesID: "n", CustomerEmail: "b@b.co", CustomerName: "Ravi", Amount: 99,
		RazorpayOrderID: "O2", Status: models.PurchaseStatusPending,
	}).Error)

	w := s.do(http.MethodGet, "/api/admin/purchases/report?status=completed", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data SalesReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 199.0, resp.Data.Stats.TotalRevenue)
	assert.Equal(t, "50%", resp.Data.Stats.CompletionRate)
	assert.Equal(t, 1, resp.Data.Page.TotalItems)

	w = s.do(http.MethodGet, "/api/admin/purchases/report?range=fortnight", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/admin/purchases/export?q=ravi", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=sales-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Ravi")
	assert.Contains(t, lines[1], "N/A")
}

func TestSyllabusDownloadEndpoint(t *testing.T) {
	s := newTestServer(t)
	syllabus := &models.Syllabus{University: "U", Branch: "CSE", Semester: "3", Title: "Sem 3", IsFree: true}
	require.NoError(t, s.db.Create(syllabus).Error)

	w := s.do(http.MethodPost, "/api/syllabuses/downloads", gin.H{
		"syllabus_id": syllabus.ID, "student_name": "Priya", "student_email": "bad-email",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email format", errorMessage(t, w))

	w = s.do(http.MethodPost, "/api/syllabuses/downloads", gin.H{
		"syllabus_id": syllabus.ID, "student_name": "Priya", "student_email": "Priya@Example.com",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/syllabuses/downloads", gin.H{
		"syllabus_id": "missing", "student_name": "Priya", "student_email": "priya@example.com",
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/syllabuses?branch=CSE", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	token := s.adminToken(t)
	w = s.do(http.MethodGet, "/api/admin/syllabus-downloads?syllabus_id="+syllabus.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var leads struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	assert.Equal(t, int64(1), leads.Total)

	w = s.do(http.MethodGet, "/api/admin/syllabus-downloads?limit=abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoteUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	upload := func(withFile bool) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range map[string]string{"university": "U", "course": "C", "subject": "S", "title": "T"} {
			_ = mw.WriteField(k, v)
		}
		if withFile {
			part, _ := mw.CreateFormFile("file", "notes.pdf")
			_, _ = part.Write([]byte("%PDF-1.4\n"))
		}
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/admin/notes", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, upload(false).Code)
	assert.Equal(t, http.StatusServiceUnavailable, upload(true).Code)
}

func TestResolveNoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	note := &models.Note{University: "Anna University", Course: "B.E", Subject: "Data Structures", ChapterNo: "Unit 1", Title: "DS"}
	require.NoError(t, s.db.Create(note).Error)

	w := s.do(http.MethodGet, "/api/resolve/notes/anna-university/be/data-structures/unit-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), note.ID)

	w = s.do(http.MethodGet, "/api/resolve/notes/ds-"+note.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/resolve/notes/nowhere/at/all/here", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
