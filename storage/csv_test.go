package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"sensortower-sync/models"
)

func TestSnapshotWriterDownloadRanks(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewSnapshotWriter(dir)
	if err != nil {
		t.Fatalf("NewSnapshotWriter: %v", err)
	}

	rows := downloadRows("2026-08-31", 15)
	if err := sw.WriteDownloadRanks(TableDownloadRank, rows); err != nil {
		t.Fatalf("WriteDownloadRanks: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, TableDownloadRank+".csv"))
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(records) != 16 {
		t.Fatalf("got %d records, want header + 15 rows", len(records))
	}
	if records[0][0] != "fetch_date" {
		t.Errorf("header[0]: got %q", records[0][0])
	}
	if records[1][5] != "1" || records[1][6] != "app-01" {
		t.Errorf("first data row mis-shaped: %v", records[1])
	}
}

func TestSnapshotWriterAdvertiserRanks(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewSnapshotWriter(dir)
	if err != nil {
		t.Fatalf("NewSnapshotWriter: %v", err)
	}

	rows := []*models.AdvertiserRankRow{
		{FetchDate: "2026-08-31", Rank: 1, AppID: "adv-1", AppName: "Mega Shop", SOV: 12.345},
	}
	if err := sw.WriteAdvertiserRanks(TableAdvertiserRank, rows); err != nil {
		t.Fatalf("WriteAdvertiserRanks: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, TableAdvertiserRank+".csv"))
	if err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	if records[1][7] != "12.345" {
		t.Errorf("sov column: got %q", records[1][7])
	}
}
