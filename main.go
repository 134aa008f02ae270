package main

import (
	"context"
	"os"
	"time"

	"sensortower-sync/config"
	"sensortower-sync/models"
	"sensortower-sync/sensortower"
	"sensortower-sync/services"
	"sensortower-sync/storage"
	"sensortower-sync/utils"
)

// topN is the fixed size of every ranking.
const topN = 15

// advertiserFetchLimit over-fetches the ad-intel ranking; the transform
// keeps the top 15.
const advertiserFetchLimit = 25

func main() {
	logger := utils.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	window := sensortower.CurrentWindow(now)

	logger.Info("=== SensorTower ranking sync starting ===")
	logger.Info("Fetch date: %s", now.Format(sensortower.DateFormat))
	logger.Info("Window: %s to %s (previous: %s to %s)",
		window.Start.Format(sensortower.DateFormat), window.End.Format(sensortower.DateFormat),
		window.PrevStart.Format(sensortower.DateFormat), window.PrevEnd.Format(sensortower.DateFormat))

	var store storage.RankStore
	if cfg.SupabaseDBURL != "" {
		pg, err := storage.NewPostgresStore(cfg.SupabaseDBURL)
		if err != nil {
			logger.Error("Failed to connect to Postgres: %v", err)
			os.Exit(1)
		}
		logger.Info("Writing via direct Postgres connection")
		store = pg
	} else {
		sb := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, logger)
		for _, table := range append(storage.DownloadRankTables(), storage.TableAdvertiserRank) {
			if !sb.ProbeTable(table) {
				logger.Warn("Table %q not reachable — will attempt inserts anyway", table)
			}
		}
		logger.Info("Writing via Supabase REST endpoint")
		store = sb
	}
	defer store.Close()

	var snapshot *storage.SnapshotWriter
	if cfg.SnapshotDir != "" {
		snapshot, err = storage.NewSnapshotWriter(cfg.SnapshotDir)
		if err != nil {
			logger.Error("Failed to create snapshot writer: %v", err)
			os.Exit(1)
		}
	}

	client := sensortower.NewClient(cfg, logger)
	transformer := services.NewTransformer(logger)
	summary := services.NewSummaryService(logger, now.Format(sensortower.DateFormat))
	ctx := context.Background()

	downloadRankings := []struct {
		kind  sensortower.RankingKind
		table string
		label string
	}{
		{sensortower.KindDownloads, storage.TableDownloadRank, "top apps by downloads"},
		{sensortower.KindPercentGrowth, storage.TableDownloadPercentRank, "top apps by download % increase"},
		{sensortower.KindDownloadDelta, storage.TableDownloadDeltaRank, "top apps by download delta"},
	}

	for _, r := range downloadRankings {
		logger.Info("--- Fetching %s ---", r.label)

		entries, err := client.FetchComparison(ctx, r.kind, window, topN)
		if err != nil {
			logger.Error("Fetch failed for %s: %v", r.table, err)
			os.Exit(1)
		}

		rows, err := transformer.DownloadRows(entries, window, now, topN)
		if err != nil {
			logger.Error("Transform failed for %s: %v", r.table, err)
			os.Exit(1)
		}

		enrichDownloadRows(ctx, client, logger, rows)

		if err := store.ReplaceDownloadRanks(r.table, rows); err != nil {
			logger.Error("Write failed for %s: %v", r.table, err)
			os.Exit(1)
		}
		if snapshot != nil {
			if err := snapshot.WriteDownloadRanks(r.table, rows); err != nil {
				logger.Warn("Snapshot failed for %s: %v", r.table, err)
			}
		}
		summary.RecordDownloads(r.table, rows)
	}

	logger.Info("--- Fetching top advertisers by share of voice ---")

	advertisers, err := client.FetchTopAdvertisers(ctx, window, advertiserFetchLimit)
	if err != nil {
		logger.Error("Fetch failed for %s: %v", storage.TableAdvertiserRank, err)
		os.Exit(1)
	}

	advertiserRows, err := transformer.AdvertiserRows(advertisers, window, now, topN)
	if err != nil {
		logger.Error("Transform failed for %s: %v", storage.TableAdvertiserRank, err)
		os.Exit(1)
	}

	enrichAdvertiserRows(ctx, client, logger, advertiserRows)

	if err := store.ReplaceAdvertiserRanks(storage.TableAdvertiserRank, advertiserRows); err != nil {
		logger.Error("Write failed for %s: %v", storage.TableAdvertiserRank, err)
		os.Exit(1)
	}
	if snapshot != nil {
		if err := snapshot.WriteAdvertiserRanks(storage.TableAdvertiserRank, advertiserRows); err != nil {
			logger.Warn("Snapshot failed for %s: %v", storage.TableAdvertiserRank, err)
		}
	}
	summary.RecordAdvertisers(storage.TableAdvertiserRank, advertiserRows)

	summary.Print()
	logger.Info("=== Sync complete ===")
}

// enrichDownloadRows fills app metadata on ranked rows via the unified app
// lookup. Lookups are best-effort and never abort the run.
func enrichDownloadRows(ctx context.Context, client *sensortower.Client, logger *utils.Logger, rows []*models.DownloadRankRow) {
	for _, r := range rows {
		info := client.LookupApp(ctx, r.AppID)
		r.AppName = info.Name
		r.Publisher = info.Publisher
		r.IconURL = info.IconURL
		logger.Debug("  #%d: %s — %d avg daily downloads (%+.2f%%)",
			r.Rank, r.AppName, r.Downloads, r.DownloadPctChange)
	}
}

// enrichAdvertiserRows overrides the ad-intel endpoint's metadata with the
// unified lookup's when the lookup resolves; the endpoint's own fields stay
// as fallback.
func enrichAdvertiserRows(ctx context.Context, client *sensortower.Client, logger *utils.Logger, rows []*models.AdvertiserRankRow) {
	for _, r := range rows {
		info := client.LookupApp(ctx, r.AppID)
		if info.Name != "Unknown" {
			r.AppName = info.Name
		}
		if info.Publisher != "Unknown" {
			r.Publisher = info.Publisher
		}
		if info.IconURL != "" {
			r.IconURL = info.IconURL
		}
		logger.Debug("  #%d: %s (%s) — SoV %.3f", r.Rank, r.AppName, r.Publisher, r.SOV)
	}
}
