package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"sensortower-sync/models"
)

// PostgresStore writes rows over a direct Postgres connection (the Supabase
// connection string), bypassing PostgREST. It creates the destination tables
// if they are absent.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection, verifies it and ensures the
// destination tables exist.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	for _, table := range DownloadRankTables() {
		if _, err := ps.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                  SERIAL PRIMARY KEY,
				fetch_date          DATE    NOT NULL,
				period_start        DATE    NOT NULL,
				period_end          DATE    NOT NULL,
				prev_period_start   DATE    NOT NULL,
				prev_period_end     DATE    NOT NULL,
				rank                INT     NOT NULL,
				app_id              TEXT    NOT NULL,
				app_name            TEXT    NOT NULL DEFAULT '',
				publisher           TEXT    NOT NULL DEFAULT '',
				icon_url            TEXT    NOT NULL DEFAULT '',
				downloads           BIGINT  NOT NULL DEFAULT 0,
				previous_downloads  BIGINT  NOT NULL DEFAULT 0,
				download_delta      BIGINT  NOT NULL DEFAULT 0,
				download_pct_change NUMERIC(12,2) NOT NULL DEFAULT 0,
				UNIQUE (fetch_date, rank)
			)`, table)); err != nil {
			return err
		}
	}

	_, err := ps.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id           SERIAL PRIMARY KEY,
			fetch_date   DATE    NOT NULL,
			period_start DATE    NOT NULL,
			rank         INT     NOT NULL,
			app_id       TEXT    NOT NULL,
			app_name     TEXT    NOT NULL DEFAULT '',
			publisher    TEXT    NOT NULL DEFAULT '',
			icon_url     TEXT    NOT NULL DEFAULT '',
			sov          NUMERIC(10,3) NOT NULL DEFAULT 0,
			UNIQUE (fetch_date, rank)
		)`, TableAdvertiserRank))
	return err
}

// ReplaceDownloadRanks replaces a download-based table's rows for the rows'
// fetch date inside one transaction.
func (ps *PostgresStore) ReplaceDownloadRanks(table string, rows []*models.DownloadRankRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %v", ErrWrite, table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE fetch_date = $1", table), rows[0].FetchDate); err != nil {
		return fmt.Errorf("%w: %s: delete: %v", ErrWrite, table, err)
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		if err := insertDownloadBatch(tx, table, rows[i:end]); err != nil {
			return fmt.Errorf("%w: %s: insert: %v", ErrWrite, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: commit: %v", ErrWrite, table, err)
	}
	return nil
}

// ReplaceAdvertiserRanks replaces the advertiser table's rows for the rows'
// fetch date inside one transaction.
func (ps *PostgresStore) ReplaceAdvertiserRanks(table string, rows []*models.AdvertiserRankRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %v", ErrWrite, table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE fetch_date = $1", table), rows[0].FetchDate); err != nil {
		return fmt.Errorf("%w: %s: delete: %v", ErrWrite, table, err)
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		if err := insertAdvertiserBatch(tx, table, rows[i:end]); err != nil {
			return fmt.Errorf("%w: %s: insert: %v", ErrWrite, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: commit: %v", ErrWrite, table, err)
	}
	return nil
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func insertDownloadBatch(tx *sql.Tx, table string, batch []*models.DownloadRankRow) error {
	const cols = 14
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.FetchDate, r.PeriodStart, r.PeriodEnd, r.PrevPeriodStart, r.PrevPeriodEnd,
			r.Rank, r.AppID, r.AppName, r.Publisher, r.IconURL,
			r.Downloads, r.PreviousDownloads, r.DownloadDelta, r.DownloadPctChange)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (fetch_date, period_start, period_end, prev_period_start, prev_period_end,
			rank, app_id, app_name, publisher, icon_url,
			downloads, previous_downloads, download_delta, download_pct_change)
		VALUES %s`, table, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

func insertAdvertiserBatch(tx *sql.Tx, table string, batch []*models.AdvertiserRankRow) error {
	const cols = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.FetchDate, r.PeriodStart, r.Rank, r.AppID,
			r.AppName, r.Publisher, r.IconURL, r.SOV)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (fetch_date, period_start, rank, app_id, app_name, publisher, icon_url, sov)
		VALUES %s`, table, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}
