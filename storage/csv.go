package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sensortower-sync/models"
)

// SnapshotWriter dumps written rows to per-table CSV files, one file per
// destination table. Snapshots are a debugging aid; failures here are
// surfaced but the caller decides whether they abort the run.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter creates the snapshot directory if needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create snapshot dir: %w", err)
	}
	return &SnapshotWriter{dir: dir}, nil
}

// WriteDownloadRanks writes a download-based table's rows to <dir>/<table>.csv.
func (s *SnapshotWriter) WriteDownloadRanks(table string, rows []*models.DownloadRankRow) error {
	return s.writeFile(table, []string{
		"fetch_date", "period_start", "period_end", "prev_period_start", "prev_period_end",
		"rank", "app_id", "app_name", "publisher", "icon_url",
		"downloads", "previous_downloads", "download_delta", "download_pct_change",
	}, func(w *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.FetchDate, r.PeriodStart, r.PeriodEnd, r.PrevPeriodStart, r.PrevPeriodEnd,
				strconv.Itoa(r.Rank), r.AppID, r.AppName, r.Publisher, r.IconURL,
				strconv.FormatInt(r.Downloads, 10),
				strconv.FormatInt(r.PreviousDownloads, 10),
				strconv.FormatInt(r.DownloadDelta, 10),
				strconv.FormatFloat(r.DownloadPctChange, 'f', 2, 64),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteAdvertiserRanks writes the advertiser table's rows to <dir>/<table>.csv.
func (s *SnapshotWriter) WriteAdvertiserRanks(table string, rows []*models.AdvertiserRankRow) error {
	return s.writeFile(table, []string{
		"fetch_date", "period_start", "rank", "app_id", "app_name", "publisher", "icon_url", "sov",
	}, func(w *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.FetchDate, r.PeriodStart, strconv.Itoa(r.Rank), r.AppID,
				r.AppName, r.Publisher, r.IconURL,
				strconv.FormatFloat(r.SOV, 'f', 3, 64),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SnapshotWriter) writeFile(table string, header []string, writeRows func(*csv.Writer) error) error {
	path := filepath.Join(s.dir, table+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := writeRows(w); err != nil {
		return fmt.Errorf("csv: write rows: %w", err)
	}
	w.Flush()
	return w.Error()
}
