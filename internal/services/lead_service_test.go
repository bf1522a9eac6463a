package services

import (
	"context"
	"testing"

	"notes-marketplace-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDownload(t *testing.T) {
	db := newTestDB(t)
	syllabus := &models.Syllabus{University: "U", Branch: "CSE", Semester: "3", Title: "Sem 3", IsFree: true}
	require.NoError(t, db.Create(syllabus).Error)

	svc := NewLeadServiceWith(db)
	ctx := context.Background()

	lead, err := svc.RecordDownload(ctx, syllabus.ID, "  Priya ", "  Priya@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "Priya", lead.StudentName)
	assert.Equal(t, "priya@example.com", lead.StudentEmail)

	// repeat downloads append
	_, err = svc.RecordDownload(ctx, syllabus.ID, "Priya", "priya@example.com")
	require.NoError(t, err)

	var stored models.Syllabus
	require.NoError(t, db.First(&stored, "id = ?", syllabus.ID).Error)
	assert.Equal(t, int64(2), stored.DownloadCount)

	leads, total, err := svc.ListDownloads(ctx, LeadListFilter{SyllabusID: syllabus.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, leads, 2)
	require.NotNil(t, leads[0].Syllabus)
	assert.Equal(t, "Sem 3", leads[0].Syllabus.Title)

	page, total, err := svc.ListDownloads(ctx, LeadListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 1)
}

func TestRecordDownloadValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadServiceWith(db)
	ctx := context.Background()

	_, err := svc.RecordDownload(ctx, "s1", "", "a@b.co")
	assert.ErrorIs(t, err, ErrMissingFields)

	for _, email := range []string{"no-at-sign", "a@b", "a b@c.d", "@example.com"} {
		_, err = svc.RecordDownload(ctx, "s1", "Name", email)
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}

	_, err = svc.RecordDownload(ctx, "missing", "Name", "a@b.co")
	assert.ErrorIs(t, err, ErrSyllabusNotFound)

	var count int64
	require.NoError(t, db.Model(&models.SyllabusDownload{}).Count(&count).Error)
	assert.Zero(t, count)
}
