package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"
	"notes-marketplace-api/pkg/metrics"

	"gorm.io/gorm"
)

// DefaultLeadListLimit is the page size of the admin lead listing
const DefaultLeadListLimit = 100

// LeadEmailRegex is the accepted shape of a student email
var LeadEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LeadService records syllabus download leads
type LeadService struct {
	db *gorm.DB
}

// NewLeadService creates a lead service on the shared database
func NewLeadService() *LeadService {
	return NewLeadServiceWith(database.GetDB())
}

// NewLeadServiceWith creates a lead service on db
func NewLeadServiceWith(db *gorm.DB) *LeadService {
	return &LeadService{db: db}
}

// NormalizeLeadEmail trims and lower-cases an email
func NormalizeLeadEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RecordDownload appends a lead and bumps the syllabus download counter in
// one transaction. Repeat downloads by the same student add new rows.
func (s *LeadService) RecordDownload(ctx context.Context, syllabusID, studentName, studentEmail string) (*models.SyllabusDownload, error) {
	name := strings.TrimSpace(studentName)
	email := NormalizeLeadEmail(studentEmail)
	if syllabusID == "" || name == "" || email == "" {
		return nil, ErrMissingFields
	}
	if !LeadEmailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	lead := &models.SyllabusDownload{
		SyllabusID:   syllabusID,
		StudentName:  name,
		StudentEmail: email,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Syllabus{}).
			Where("id = ?", syllabusID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSyllabusNotFound
		}
		return tx.Create(lead).Error
	})
	if err != nil {
		if errors.Is(err, ErrSyllabusNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record download: %w", err)
	}

	metrics.SyllabusLeads.Inc()
	logging.Infof("Recorded download of syllabus %s", syllabusID)
	return lead, nil
}

// LeadListFilter pages the admin lead listing
type LeadListFilter struct {
	SyllabusID string
	Limit      int
	Offset     int
}

// ListDownloads returns leads newest first, each joined with its syllabus,
// plus the total matching the filter.
func (s *LeadService) ListDownloads(ctx context.Context, f LeadListFilter) ([]models.SyllabusDownloadWithSyllabus, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLeadListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	db := s.db.WithContext(ctx)
	scoped := func() *gorm.DB {
		q := db.Model(&models.SyllabusDownload{})
		if f.SyllabusID != "" {
			q = q.Where("syllabus_id = ?", f.SyllabusID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count downloads: %w", err)
	}

	var leads []models.SyllabusDownload
	if err := scoped().Order("created_at DESC").Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list downloads: %w", err)
	}

	ids := make([]string, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.SyllabusID)
	}
	summaries := make(map[string]*models.SyllabusSummary, len(ids))
	if len(ids) > 0 {
		var rows []models.SyllabusSummary
		err := db.Model(&models.Syllabus{}).Unscoped().
			Select("id", "title", "university", "course", "branch", "semester").
			Where("id IN ?", ids).
			Scan(&rows).Error
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load syllabuses: %w", err)
		}
		for i := range rows {
			summaries[rows[i].ID] = &rows[i]
		}
	}

	out := make([]models.SyllabusDownloadWithSyllabus, len(leads))
	for i, l := range leads {
		out[i] = models.SyllabusDownloadWithSyllabus{SyllabusDownload: l, Syllabus: summaries[l.SyllabusID]}
	}
	return out, total, nil
}
