package services

import (
	"context"
	"testing"

	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testGatewaySecret = "rzp_test_secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*GatewayOrder)
	return order, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPurchaseReceipt(ctx context.Context, purchase *models.Purchase, note *models.Note) error {
	args := m.Called(ctx, purchase, note)
	return args.Error(0)
}

func seedNote(t *testing.T, db *gorm.DB, n models.Note) *models.Note {
	t.Helper()
	if n.University == "" {
		n.University = "Anna University"
	}
	if n.Course == "" {
		n.Course = "B.E"
	}
	if n.Subject == "" {
		n.Subject = "Data Structures"
	}
	if n.Title == "" {
		n.Title = n.Subject + " notes"
	}
	require.NoError(t, db.Create(&n).Error)
	return &n
}

func seedPurchase(t *testing.T, db *gorm.DB, p models.Purchase) *models.Purchase {
	t.Helper()
	if p.CustomerName == "" {
		p.CustomerName = "Asha"
	}
	if p.CustomerEmail == "" {
		p.CustomerEmail = "asha@example.com"
	}
	if p.RazorpayOrderID == "" {
		p.RazorpayOrderID = "order_" + uuid.NewString()[:8]
	}
	if p.Status == "" {
		p.Status = models.PurchaseStatusPending
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func strPtr(s string) *string { return &s }
