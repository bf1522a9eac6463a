package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/internal/services"

	"github.com/spf13/cobra"
)

func salesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Sales reporting",
	}
	cmd.AddCommand(salesReportCmd())
	cmd.AddCommand(salesExportCmd())
	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *services.SalesFilter) {
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Match customer name or email")
	cmd.Flags().StringVarP(&f.Status, "status", "s", "all", "Purchase status (all, pending, completed, failed, cancelled)")
	cmd.Flags().StringVarP(&f.DateRange, "range", "r", "all", "Date range (all, today, 7d, 30d)")
	cmd.Flags().StringVar(&f.Sort, "sort", "newest", "Sort order (newest, oldest)")
}

func filteredPurchases(cmd *cobra.Command, f services.SalesFilter, now time.Time) (all, filtered []models.PurchaseWithNote, err error) {
	all, err = services.NewPurchaseService().ListWithNotes(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	filtered, err = services.FilterPurchases(all, f, now)
	if err != nil {
		return nil, nil, err
	}
	return all, filtered, nil
}

func salesReportCmd() *cobra.Command {
	var (
		filter services.SalesFilter
		page   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print sales stats and a page of purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			all, filtered, err := filteredPurchases(cmd, filter, now)
			if err != nil {
				return err
			}
			stats := services.ComputeSalesStats(all, now)
			p := services.Paginate(filtered, page)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"stats": stats, "page": p})
			}
			printReport(out, stats, p)
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().IntVarP(&page, "page", "n", 1, "Page number")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func printReport(out io.Writer, stats services.SalesStats, p services.SalesPage) {
	fmt.Fprintln(out, "Sales")
	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintf(out, "  Revenue:          %.2f\n", stats.TotalRevenue)
	fmt.Fprintf(out, "  Sales:            %d\n", stats.TotalSales)
	fmt.Fprintf(out, "  Today:            %d\n", stats.TodaysSales)
	fmt.Fprintf(out, "  This month:       %d\n", stats.ThisMonthSales)
	fmt.Fprintf(out, "  Unique customers: %d\n", stats.UniqueCustomers)
	fmt.Fprintf(out, "  Completion rate:  %s (%d purchases)\n", stats.CompletionRate, stats.TotalPurchases)

	fmt.Fprintf(out, "\nPage %d of %d (%d matching)\n", p.Page, p.TotalPages, p.TotalItems)
	for _, item := range p.Items {
		title := "N/A"
		if item.Note != nil {
			title = item.Note.Title
		}
		fmt.Fprintf(out, "  %s  %-10s %8.2f  %s <%s>  %s\n",
			item.CreatedAt.Format("2006-01-02"), item.Status, item.Amount,
			item.CustomerName, item.CustomerEmail, title)
	}
}

func salesExportCmd() *cobra.Command {
	var (
		filter services.SalesFilter
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filtered purchases as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, filtered, err := filteredPurchases(cmd, filter, time.Now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := services.WriteSalesCSV(w, filtered); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d purchases to %s\n", len(filtered), out)
			}
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
