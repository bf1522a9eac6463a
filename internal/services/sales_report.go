package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"notes-marketplace-api/internal/models"
)

// SalesPageSize is the fixed admin table page size
const SalesPageSize = 15

var ErrInvalidFilter = errors.New("invalid report filter")

// SalesStats is the dashboard summary. Only completed purchases count
// towards revenue and sales.
type SalesStats struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalSales      int     `json:"total_sales"`
	TodaysSales     int     `json:"todays_sales"`
	ThisMonthSales  int     `json:"this_month_sales"`
	UniqueCustomers int     `json:"unique_customers"`
	TotalPurchases  int     `json:"total_purchases"`
	CompletionRate  string  `json:"completion_rate"`
}

// ComputeSalesStats derives the summary from the full purchase set.
// Customer emails are counted as stored, without case folding.
func ComputeSalesStats(purchases []models.PurchaseWithNote, now time.Time) SalesStats {
	today := startOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := SalesStats{TotalPurchases: len(purchases)}
	emails := make(map[string]struct{}, len(purchases))
	for _, p := range purchases {
		emails[p.CustomerEmail] = struct{}{}
		if p.Status != models.PurchaseStatusCompleted {
			continue
		}
		stats.TotalSales++
		stats.TotalRevenue += p.Amount
		if !p.CreatedAt.Before(today) {
			stats.TodaysSales++
		}
		if !p.CreatedAt.Before(monthStart) {
			stats.ThisMonthSales++
		}
	}
	stats.UniqueCustomers = len(emails)

	rate := 0
	if len(purchases) > 0 {
		rate = int(math.Round(float64(stats.TotalSales) / float64(len(purchases)) * 100))
	}
	stats.CompletionRate = fmt.Sprintf("%d%%", rate)
	return stats
}

// SalesFilter narrows and orders the admin purchase table
type SalesFilter struct {
	Query     string
	Status    string // empty or "all" matches every status
	DateRange string // "", "all", "today", "7d"/"week", "30d"/"month"
	Sort      string // "newest" (default) or "oldest"
}

// DateCutoff returns the earliest created_at a row may have to pass the
// date-range filter, and false when the range does not filter.
func DateCutoff(dateRange string, now time.Time) (time.Time, bool, error) {
	switch strings.ToLower(strings.TrimSpace(dateRange)) {
	case "", "all":
		return time.Time{}, false, nil
	case "today":
		return startOfDay(now), true, nil
	case "7d", "7days", "week":
		return now.AddDate(0, 0, -7), true, nil
	case "30d", "30days", "month":
		return now.AddDate(0, 0, -30), true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: date range %q", ErrInvalidFilter, dateRange)
}

// FilterPurchases applies query, status and date-range filters and sorts by created_at
func FilterPurchases(purchases []models.PurchaseWithNote, f SalesFilter, now time.Time) ([]models.PurchaseWithNote, error) {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status != "" && status != "all" && !models.PurchaseStatus(status).Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}
	cutoff, byDate, err := DateCutoff(f.DateRange, now)
	if err != nil {
		return nil, err
	}
	order := strings.ToLower(strings.TrimSpace(f.Sort))
	if order != "" && order != "newest" && order != "oldest" {
		return nil, fmt.Errorf("%w: sort %q", ErrInvalidFilter, f.Sort)
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.PurchaseWithNote, 0, len(purchases))
	for _, p := range purchases {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.CustomerName), query) &&
			!strings.Contains(strings.ToLower(p.CustomerEmail), query) {
			continue
		}
		if status != "" && status != "all" && string(p.Status) != status {
			continue
		}
		if byDate && p.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == "oldest" {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SalesPage is one page of the filtered table
type SalesPage struct {
	Items      []models.PurchaseWithNote `json:"items"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalItems int                       `json:"total_items"`
	TotalPages int                       `json:"total_pages"`
}

// Paginate slices a filtered set into fixed-size pages; page is 1-based
func Paginate(purchases []models.PurchaseWithNote, page int) SalesPage {
	if page < 1 {
		page = 1
	}
	total := len(purchases)
	result := SalesPage{
		Items:      []models.PurchaseWithNote{},
		Page:       page,
		PageSize:   SalesPageSize,
		TotalItems: total,
		TotalPages: (total + SalesPageSize - 1) / SalesPageSize,
	}

	start := (page - 1) * SalesPageSize
	if start >= total {
		return result
	}
	end := start + SalesPageSize
	if end > total {
		end = total
	}
	result.Items = purchases[start:end]
	return result
}

var salesCSVHeader = []string{"Date", "Customer Name", "Email", "Amount", "Payment ID", "Status"}

// WriteSalesCSV writes the export with a header row
func WriteSalesCSV(w io.Writer, purchases []models.PurchaseWithNote) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesCSVHeader); err != nil {
		return err
	}
	for _, p := range purchases {
		paymentID := "N/A"
		if p.RazorpayPaymentID != nil && *p.RazorpayPaymentID != "" {
			paymentID = *p.RazorpayPaymentID
		}
		status := string(p.Status)
		if status == "" {
			status = string(models.PurchaseStatusPending)
		}
		record := []string{
			p.CreatedAt.Format("2006-01-02"),
			orNA(p.CustomerName),
			orNA(p.CustomerEmail),
			strconv.FormatFloat(p.Amount, 'f', -1, 64),
			paymentID,
			status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
