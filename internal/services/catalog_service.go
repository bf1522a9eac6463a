package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/pkg/logging"

	"gorm.io/gorm"
)

const notesCacheKey = "catalog:notes"

var (
	uuidPattern  = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	dotPattern   = regexp.MustCompile(`\.\s*`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// UploadedFile is a document received from an admin form
type UploadedFile struct {
	Name    string
	Content []byte
}

// NoteInput holds the admin-editable fields of a note
type NoteInput struct {
	University      string
	Course          string
	Branch          string
	Semester        string
	Subject         string
	ChapterNo       string
	Title           string
	Description     string
	Author          string
	Price           float64
	OriginalPrice   float64
	DiscountedPrice *float64
}

// SyllabusInput holds the admin-editable fields of a syllabus
type SyllabusInput struct {
	University  string
	Course      string
	Author      string
	Branch      string
	Semester    string
	Title       string
	Description string
}

// SyllabusFilter narrows the public syllabus list
type SyllabusFilter struct {
	University string
	Branch     string
	Semester   string
}

var (
	noteUpdateColumns = map[string]bool{
		"university": true, "course": true, "branch": true, "semester": true,
		"subject": true, "chapter_no": true, "title": true, "description": true,
		"author": true, "price": true, "original_price": true, "discounted_price": true,
	}
	syllabusUpdateColumns = map[string]bool{
		"university": true, "course": true, "branch": true, "semester": true,
		"title": true, "description": true, "author": true,
	}
)

// CatalogService manages notes and syllabuses
type CatalogService struct {
	db       *gorm.DB
	store    FileStore
	cache    *RedisService
	cacheTTL time.Duration
}

// NewCatalogService creates a catalog service from the application config.
// store may be nil, in which case uploads fail with ErrStorageNotConfigured.
func NewCatalogService(store FileStore) *CatalogService {
	return NewCatalogServiceWith(database.GetDB(), store, NewRedisService(),
		time.Duration(config.AppConfig.CatalogCacheSeconds)*time.Second)
}

// NewCatalogServiceWith creates a catalog service with explicit collaborators
func NewCatalogServiceWith(db *gorm.DB, store FileStore, cache *RedisService, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{db: db, store: store, cache: cache, cacheTTL: cacheTTL}
}

// ListNotes returns every note, newest first
func (s *CatalogService) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := s.cache.GetJSON(ctx, notesCacheKey, &notes); err == nil {
		return notes, nil
	}

	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if err := s.cache.SetJSON(ctx, notesCacheKey, notes, s.cacheTTL); err != nil {
		logging.Warnf("Failed to cache notes list: %v", err)
	}
	return notes, nil
}

// GetNote loads a note by id
func (s *CatalogService) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	return &note, nil
}

// NormalizeSlugText folds a URL segment or stored attribute into the form
// used for slug matching.
func NormalizeSlugText(s string) string {
	if s == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = dotPattern.ReplaceAllString(s, "")
	return spacePattern.ReplaceAllString(s, " ")
}

// ExtractID returns the UUID embedded in a slug, or the slug itself
func ExtractID(slug string) string {
	if m := uuidPattern.FindString(slug); m != "" {
		return m
	}
	return slug
}

// ResolveNote finds a note from a URL path: either
// university/course/subject/chapter or a single segment carrying its id.
func (s *CatalogService) ResolveNote(ctx context.Context, segments []string) (*models.Note, error) {
	switch len(segments) {
	case 1:
		return s.GetNote(ctx, ExtractID(segments[0]))
	case 4:
		notes, err := s.ListNotes(ctx)
		if err != nil {
			return nil, err
		}
		want := [4]string{}
		for i, seg := range segments {
			want[i] = NormalizeSlugText(seg)
		}
		for i := range notes {
			n := &notes[i]
			if NormalizeSlugText(n.University) == want[0] &&
				NormalizeSlugText(n.Course) == want[1] &&
				NormalizeSlugText(n.Subject) == want[2] &&
				NormalizeSlugText(n.ChapterNo) == want[3] {
				return n, nil
			}
		}
	}
	return nil, ErrNoteNotFound
}

// CreateNote validates and stores the file, then records the note.
// The stored file is removed again if the row cannot be written.
func (s *CatalogService) CreateNote(ctx context.Context, in NoteInput, file UploadedFile) (*models.Note, error) {
	if in.University == "" || in.Course == "" || in.Subject == "" || in.Title == "" {
		return nil, ErrMissingFields
	}
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	pages, err := CheckPDF(file.Name, file.Content, NotesPDFLimits)
	if err != nil {
		return nil, err
	}

	folder, err := s.store.EnsureFolder(ctx, "notes", in.Subject)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Upload(ctx, folder, file.Name, file.Content, "application/pdf")
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		University:      in.University,
		Course:          in.Course,
		Branch:          in.Branch,
		Semester:        in.Semester,
		Subject:         in.Subject,
		ChapterNo:       in.ChapterNo,
		Title:           in.Title,
		Description:     in.Description,
		Author:          in.Author,
		Price:           in.Price,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		PageCount:       pages,
		FileID:          stored.FileID,
		DownloadURL:     stored.DownloadURL,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		if delErr := s.store.Delete(ctx, stored.FileID); delErr != nil {
			logging.Errorf("Failed to remove orphaned upload %s: %v", stored.FileID, delErr)
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.invalidateNotes(ctx)
	logging.Infof("Note %s created (%d pages)", note.ID, pages)
	return note, nil
}

// UpdateNote applies admin edits; unknown columns are ignored
func (s *CatalogService) UpdateNote(ctx context.Context, id string, updates map[string]interface{}) (*models.Note, error) {
	filtered := filterColumns(updates, noteUpdateColumns)
	if len(filtered) == 0 {
		return nil, ErrMissingFields
	}

	result := s.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Updates(filtered)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoteNotFound
	}

	s.invalidateNotes(ctx)
	return s.GetNote(ctx, id)
}

// DeleteNote removes a note and its stored file. Past purchases keep their
// snapshotted download URL.
func (s *CatalogService) DeleteNote(ctx context.Context, id string) error {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return err
	}
	s.deleteStored(ctx, note.FileID)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Note{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	s.invalidateNotes(ctx)
	return nil
}

// ListSyllabuses returns free syllabuses matching the filter, newest first
func (s *CatalogService) ListSyllabuses(ctx context.Context, f SyllabusFilter) ([]models.Syllabus, error) {
	query := s.db.WithContext(ctx).Where("is_free = ?", true)
	if f.University != "" {
		query = query.Where("university = ?", f.University)
	}
	if f.Branch != "" {
		query = query.Where("branch = ?", f.Branch)
	}
	if f.Semester != "" {
		query = query.Where("semester = ?", f.Semester)
	}

	var syllabuses []models.Syllabus
	if err := query.Order("created_at DESC").Find(&syllabuses).Error; err != nil {
		return nil, fmt.Errorf("failed to list syllabuses: %w", err)
	}
	return syllabuses, nil
}

// GetSyllabus loads a syllabus by id
func (s *CatalogService) GetSyllabus(ctx context.Context, id string) (*models.Syllabus, error) {
	var syllabus models.Syllabus
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&syllabus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSyllabusNotFound
		}
		return nil, fmt.Errorf("failed to load syllabus: %w", err)
	}
	return &syllabus, nil
}

// CreateSyllabus stores the file under syllabuses/<university>/<branch>/<semester>
// and records the syllabus as free.
func (s *CatalogService) CreateSyllabus(ctx context.Context, in SyllabusInput, file UploadedFile) (*models.Syllabus, error) {
	if in.University == "" || in.Branch == "" || in.Semester == "" || in.Title == "" {
		return nil, ErrMissingFields
	}
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	pages, err := CheckPDF(file.Name, file.Content, SyllabusPDFLimits)
	if err != nil {
		return nil, err
	}

	folder, err := s.store.EnsureFolder(ctx, "syllabuses", in.University, in.Branch, in.Semester)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Upload(ctx, folder, file.Name, file.Content, "application/pdf")
	if err != nil {
		return nil, err
	}

	syllabus := &models.Syllabus{
		University:  in.University,
		Course:      in.Course,
		Branch:      in.Branch,
		Semester:    in.Semester,
		Title:       in.Title,
		Description: in.Description,
		Author:      in.Author,
		IsFree:      true,
		PageCount:   pages,
		FileID:      stored.FileID,
		DownloadURL: stored.DownloadURL,
	}
	if err := s.db.WithContext(ctx).Create(syllabus).Error; err != nil {
		if delErr := s.store.Delete(ctx, stored.FileID); delErr != nil {
			logging.Errorf("Failed to remove orphaned upload %s: %v", stored.FileID, delErr)
		}
		return nil, fmt.Errorf("failed to create syllabus: %w", err)
	}

	logging.Infof("Syllabus %s created in %s", syllabus.ID, folder)
	return syllabus, nil
}

// UpdateSyllabus applies admin edits; unknown columns are ignored
func (s *CatalogService) UpdateSyllabus(ctx context.Context, id string, updates map[string]interface{}) (*models.Syllabus, error) {
	filtered := filterColumns(updates, syllabusUpdateColumns)
	if len(filtered) == 0 {
		return nil, ErrMissingFields
	}

	result := s.db.WithContext(ctx).Model(&models.Syllabus{}).Where("id = ?", id).Updates(filtered)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update syllabus: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrSyllabusNotFound
	}
	return s.GetSyllabus(ctx, id)
}

// DeleteSyllabus removes the stored file, then the row. A storage failure
// is logged and does not block the row delete.
func (s *CatalogService) DeleteSyllabus(ctx context.Context, id string) error {
	syllabus, err := s.GetSyllabus(ctx, id)
	if err != nil {
		return err
	}
	s.deleteStored(ctx, syllabus.FileID)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Syllabus{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete syllabus: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSyllabusNotFound
	}
	logging.Infof("Syllabus %s deleted", id)
	return nil
}

func (s *CatalogService) deleteStored(ctx context.Context, fileID string) {
	if fileID == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, fileID); err != nil {
		logging.Warnf("Failed to delete stored file %s, continuing with database deletion: %v", fileID, err)
	}
}

func (s *CatalogService) invalidateNotes(ctx context.Context) {
	if err := s.cache.Delete(ctx, notesCacheKey); err != nil {
		logging.Warnf("Failed to invalidate notes cache: %v", err)
	}
}

func filterColumns(updates map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
