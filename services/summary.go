package services

import (
	"fmt"
	"strconv"
	"strings"

	"sensortower-sync/models"
	"sensortower-sync/utils"
)

// SummaryService accumulates per-table results during a run and prints an
// end-of-run report.
type SummaryService struct {
	logger *utils.Logger
	report *models.RunReport
}

// NewSummaryService creates a SummaryService for the given fetch date.
func NewSummaryService(logger *utils.Logger, fetchDate string) *SummaryService {
	return &SummaryService{
		logger: logger,
		report: &models.RunReport{FetchDate: fetchDate},
	}
}

// RecordDownloads registers the rows written to a download-based table and
// tracks the biggest percent mover across all of them.
func (s *SummaryService) RecordDownloads(table string, rows []*models.DownloadRankRow) {
	res := &models.TableResult{Table: table, Rows: len(rows)}
	if len(rows) > 0 {
		res.Leader = rows[0].AppName
		res.Detail = fmt.Sprintf("%s avg daily downloads", groupDigits(rows[0].Downloads))
	}
	s.report.Tables = append(s.report.Tables, res)

	for _, r := range rows {
		if s.report.BiggestMover == nil || r.DownloadPctChange > s.report.BiggestMover.DownloadPctChange {
			s.report.BiggestMover = r
		}
	}
}

// RecordAdvertisers registers the rows written to the advertiser table.
func (s *SummaryService) RecordAdvertisers(table string, rows []*models.AdvertiserRankRow) {
	res := &models.TableResult{Table: table, Rows: len(rows)}
	if len(rows) > 0 {
		res.Leader = rows[0].AppName
		res.Detail = fmt.Sprintf("%.3f share of voice", rows[0].SOV)
	}
	s.report.Tables = append(s.report.Tables, res)
}

// Report returns the accumulated run report.
func (s *SummaryService) Report() *models.RunReport {
	return s.report
}

// Print writes the formatted run report to stdout.
func (s *SummaryService) Print() {
	r := s.report
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📈 SENSORTOWER SYNC SUMMARY — %s\033[0m\n", r.FetchDate)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Tables written\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, t := range r.Tables {
		if t.Rows == 0 {
			fmt.Printf("  %-28s \033[1;31m0 rows\033[0m\n", t.Table)
			continue
		}
		fmt.Printf("  %-28s \033[1m%d rows\033[0m — #1 %s (%s)\n",
			t.Table, t.Rows, truncate(t.Leader, 24), t.Detail)
	}
	fmt.Println()

	if r.BiggestMover != nil {
		fmt.Printf("\033[1;33m  Biggest mover\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s — \033[1;32m%+.2f%%\033[0m (%s avg daily downloads)\n",
			truncate(r.BiggestMover.AppName, 40),
			r.BiggestMover.DownloadPctChange,
			groupDigits(r.BiggestMover.Downloads))
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// groupDigits formats n with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
