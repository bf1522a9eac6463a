package services

import "notes-marketplace-api/internal/models"

// allowedTransitions lists the admin overrides permitted from each state.
// completed -> pending is not allowed: a paid purchase is either kept or
// cancelled/failed for a refund, never reopened.
var allowedTransitions = map[models.PurchaseStatus][]models.PurchaseStatus{
	models.PurchaseStatusPending: {
		models.PurchaseStatusCompleted,
		models.PurchaseStatusFailed,
		models.PurchaseStatusCancelled,
	},
	models.PurchaseStatusCompleted: {
		models.PurchaseStatusFailed,
		models.PurchaseStatusCancelled,
	},
	models.PurchaseStatusFailed: {
		models.PurchaseStatusPending,
		models.PurchaseStatusCompleted,
		models.PurchaseStatusCancelled,
	},
	models.PurchaseStatusCancelled: {
		models.PurchaseStatusPending,
		models.PurchaseStatusCompleted,
	},
}

// CanTransition reports whether an admin may move a purchase from one state
// to another. Staying in the same state is always allowed.
func CanTransition(from, to models.PurchaseStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
