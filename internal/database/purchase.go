package database

import (
	"notes-marketplace-api/internal/models"

	"gorm.io/gorm"
)

// CreatePurchase inserts a new purchase row
func CreatePurchase(db *gorm.DB, purchase *models.Purchase) error {
	return db.Create(purchase).Error
}

// GetPurchaseByID loads a purchase by its primary key
func GetPurchaseByID(db *gorm.DB, id string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := db.Where("id = ?", id).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetPurchaseByOrderID loads the purchase minted for a gateway order
func GetPurchaseByOrderID(db *gorm.DB, orderID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := db.Where("razorpay_order_id = ?", orderID).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// UpdatePurchaseFields applies a column map to the purchase with the given id
// and returns the number of rows matched.
func UpdatePurchaseFields(db *gorm.DB, id string, updates map[string]interface{}) (int64, error) {
	result := db.Model(&models.Purchase{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

// ListPurchases returns every purchase, newest first
func ListPurchases(db *gorm.DB) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := db.Order("created_at DESC").Order("id DESC").Find(&purchases).Error
	return purchases, err
}

// ListPurchasesWithNotes returns every purchase joined with the note it
// references, newest first. Notes are a weak reference: a purchase whose
// note is gone carries a nil Note.
func ListPurchasesWithNotes(db *gorm.DB) ([]models.PurchaseWithNote, error) {
	purchases, err := ListPurchases(db)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(purchases))
	seen := make(map[string]struct{}, len(purchases))
	for _, p := range purchases {
		if _, ok := seen[p.NotesID]; ok {
			continue
		}
		seen[p.NotesID] = struct{}{}
		ids = append(ids, p.NotesID)
	}

	notes := make(map[string]*models.NoteSummary, len(ids))
	if len(ids) > 0 {
		var rows []models.NoteSummary
		err := db.Model(&models.Note{}).Unscoped().
			Select("id", "university", "course", "branch", "semester", "subject", "chapter_no", "title").
			Where("id IN ?", ids).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for i := range rows {
			notes[rows[i].ID] = &rows[i]
		}
	}

	out := make([]models.PurchaseWithNote, len(purchases))
	for i, p := range purchases {
		out[i] = models.PurchaseWithNote{Purchase: p, Note: notes[p.NotesID]}
	}
	return out, nil
}
