package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sensortower-sync/models"
	"sensortower-sync/utils"
)

// ErrWrite wraps every destination-store failure: connectivity, permission
// and constraint errors alike.
var ErrWrite = errors.New("storage: write failed")

const insertBatchSize = 50

// SupabaseStore writes rows through the Supabase PostgREST endpoint using
// the service-role key.
type SupabaseStore struct {
	baseURL string
	key     string
	http    *http.Client
	logger  *utils.Logger
}

// NewSupabaseStore creates a SupabaseStore for the given project URL and
// service-role key.
func NewSupabaseStore(baseURL, serviceKey string, logger *utils.Logger) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// ProbeTable reports whether the destination table answers a select. Used at
// startup to warn about missing tables; inserts are attempted regardless.
func (s *SupabaseStore) ProbeTable(table string) bool {
	req, err := http.NewRequest(http.MethodGet, s.tableURL(table)+"?select=id&limit=1", nil)
	if err != nil {
		return false
	}
	resp, err := s.do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// ReplaceDownloadRanks replaces a download-based table's rows for the rows'
// fetch date.
func (s *SupabaseStore) ReplaceDownloadRanks(table string, rows []*models.DownloadRankRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.deleteByDate(table, rows[0].FetchDate); err != nil {
		return err
	}
	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		if err := s.insert(table, rows[i:end]); err != nil {
			return err
		}
	}
	s.logger.Info("[supabase] Replaced %d rows in %s for %s", len(rows), table, rows[0].FetchDate)
	return nil
}

// ReplaceAdvertiserRanks replaces the advertiser table's rows for the rows'
// fetch date.
func (s *SupabaseStore) ReplaceAdvertiserRanks(table string, rows []*models.AdvertiserRankRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.deleteByDate(table, rows[0].FetchDate); err != nil {
		return err
	}
	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		if err := s.insert(table, rows[i:end]); err != nil {
			return err
		}
	}
	s.logger.Info("[supabase] Replaced %d rows in %s for %s", len(rows), table, rows[0].FetchDate)
	return nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (s *SupabaseStore) Close() error { return nil }

func (s *SupabaseStore) deleteByDate(table, fetchDate string) error {
	req, err := http.NewRequest(http.MethodDelete, s.tableURL(table)+"?fetch_date=eq."+fetchDate, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: delete request: %v", ErrWrite, table, err)
	}
	resp, err := s.do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: delete: %v", ErrWrite, table, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: %s: delete: status %d: %s", ErrWrite, table, resp.StatusCode, bodySnippet(resp.Body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *SupabaseStore) insert(table string, rows any) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("%w: %s: encode rows: %v", ErrWrite, table, err)
	}
	req, err := http.NewRequest(http.MethodPost, s.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: insert request: %v", ErrWrite, table, err)
	}
	resp, err := s.do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: insert: %v", ErrWrite, table, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil
	default:
		return fmt.Errorf("%w: %s: insert: status %d: %s", ErrWrite, table, resp.StatusCode, bodySnippet(resp.Body))
	}
}

func (s *SupabaseStore) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	return s.http.Do(req)
}

func (s *SupabaseStore) tableURL(table string) string {
	return s.baseURL + "/rest/v1/" + table
}

func bodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 300))
	return strings.TrimSpace(string(b))
}
