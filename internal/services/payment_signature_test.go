package services

import (
	"testing"

	"notes-marketplace-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPaymentSignature(t *testing.T) {
	sig := GeneratePaymentSignature("order_1", "pay_1", "secret")
	assert.Len(t, sig, 64)

	assert.True(t, VerifyPaymentSignature("order_1", "pay_1", sig, "secret"))
	assert.False(t, VerifyPaymentSignature("order_1", "pay_2", sig, "secret"))
	assert.False(t, VerifyPaymentSignature("order_2", "pay_1", sig, "secret"))
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", sig, "other"))
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", "", "secret"))
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", sig, ""))
}

func TestCanTransition(t *testing.T) {
	const (
		pending   = models.PurchaseStatusPending
		completed = models.PurchaseStatusCompleted
		failed    = models.PurchaseStatusFailed
		cancelled = models.PurchaseStatusCancelled
	)
	allowed := []struct{ from, to models.PurchaseStatus }{
		{pending, completed}, {pending, failed}, {pending, cancelled},
		{completed, failed}, {completed, cancelled},
		{failed, pending}, {failed, completed}, {failed, cancelled},
		{cancelled, pending}, {cancelled, completed},
		{completed, completed},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.False(t, CanTransition(completed, pending))
	assert.False(t, CanTransition(cancelled, failed))
	assert.False(t, CanTransition(pending, "refunded"))
}
