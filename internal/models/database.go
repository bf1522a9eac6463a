package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common fields for all database models
type BaseModel struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a server-generated identifier
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Note represents a sellable notes document
type Note struct {
	BaseModel
	University      string   `json:"university" gorm:"index;not null"`
	Course          string   `json:"course" gorm:"not null"`
	Branch          string   `json:"branch"`
	Semester        string   `json:"semester"`
	Subject         string   `json:"subject" gorm:"not null"`
	ChapterNo       string   `json:"chapter_no"`
	Title           string   `json:"title" gorm:"not null"`
	Description     string   `json:"description" gorm:"type:text"`
	Author          string   `json:"author"`
	Price           float64  `json:"price"` // legacy single price
	OriginalPrice   float64  `json:"original_price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	PageCount       int      `json:"page_count"`
	FileID          string   `json:"file_id"`
	DownloadURL     string   `json:"download_url"`
}

func (Note) TableName() string {
	return "notes"
}

// EffectivePrice is the discounted price when set, else the original or legacy price
func (n *Note) EffectivePrice() float64 {
	if n.DiscountedPrice != nil && *n.DiscountedPrice > 0 {
		return *n.DiscountedPrice
	}
	if n.OriginalPrice > 0 {
		return n.OriginalPrice
	}
	return n.Price
}

// Syllabus represents a free syllabus document
type Syllabus struct {
	BaseModel
	University    string `json:"university" gorm:"index;not null"`
	Course        string `json:"course"`
	Branch        string `json:"branch" gorm:"index;not null"`
	Semester      string `json:"semester" gorm:"index;not null"`
	Title         string `json:"title" gorm:"not null"`
	Description   string `json:"description" gorm:"type:text"`
	Author        string `json:"author"`
	IsFree        bool   `json:"is_free" gorm:"default:true"`
	DownloadCount int64  `json:"download_count" gorm:"default:0"`
	PageCount     int    `json:"page_count"`
	FileID        string `json:"file_id"`
	DownloadURL   string `json:"download_url"`
}

func (Syllabus) TableName() string {
	return "syllabuses"
}

// AdminUser is a dashboard operator account
type AdminUser struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
