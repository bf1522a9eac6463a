package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PurchaseStatus is the lifecycle state of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Valid reports whether s is one of the four known states
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusCompleted, PurchaseStatusFailed, PurchaseStatusCancelled:
		return true
	}
	return false
}

// Purchase is one checkout attempt for one note.
// Amount and DownloadURL are snapshots and never recomputed from the note.
type Purchase struct {
	BaseModel
	NotesID           string         `json:"notes_id" gorm:"type:varchar(36);index;not null"`
	CustomerEmail     string         `json:"customer_email" gorm:"index;not null"`
	CustomerName      string         `json:"customer_name" gorm:"not null"`
	Amount            float64        `json:"amount" gorm:"not null"`
	Currency          string         `json:"currency" gorm:"type:varchar(8);default:INR"`
	RazorpayOrderID   string         `json:"razorpay_order_id" gorm:"uniqueIndex;not null"`
	RazorpayPaymentID *string        `json:"razorpay_payment_id"`
	Status            PurchaseStatus `json:"status" gorm:"type:varchar(16);index;not null;default:pending"`
	DownloadURL       *string        `json:"download_url"`
	DownloadMarkedAt  *time.Time     `json:"download_marked_at"`
	GatewayOrder      datatypes.JSON `json:"-"` // raw gateway order response
}

func (Purchase) TableName() string {
	return "purchases"
}

// NoteSummary is the subset of note fields shown next to a purchase
type NoteSummary struct {
	ID         string `json:"id"`
	University string `json:"university"`
	Course     string `json:"course"`
	Branch     string `json:"branch"`
	Semester   string `json:"semester"`
	Subject    string `json:"subject"`
	ChapterNo  string `json:"chapter_no"`
	Title      string `json:"title"`
}

// PurchaseWithNote is a purchase joined with its note; Note is nil when the
// referenced note no longer exists.
type PurchaseWithNote struct {
	Purchase
	Note *NoteSummary `json:"notes"`
}

// SyllabusDownload is an append-only lead record
type SyllabusDownload struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	SyllabusID   string    `json:"syllabus_id" gorm:"type:varchar(36);index;not null"`
	StudentName  string    `json:"student_name" gorm:"not null"`
	StudentEmail string    `json:"student_email" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (SyllabusDownload) TableName() string {
	return "syllabus_downloads"
}

func (d *SyllabusDownload) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// SyllabusSummary is the subset of syllabus fields shown next to a lead
type SyllabusSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	University string `json:"university"`
	Course     string `json:"course"`
	Branch     string `json:"branch"`
	Semester   string `json:"semester"`
}

// SyllabusDownloadWithSyllabus is a lead joined with its syllabus
type SyllabusDownloadWithSyllabus struct {
	SyllabusDownload
	Syllabus *SyllabusSummary `json:"syllabuses"`
}
