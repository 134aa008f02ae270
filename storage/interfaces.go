package storage

import "sensortower-sync/models"

// Destination table names.
const (
	TableDownloadRank        = "download_rank_30d"
	TableDownloadPercentRank = "download_percent_rank_30d"
	TableDownloadDeltaRank   = "download_delta_rank_30d"
	TableAdvertiserRank      = "advertiser_rank_30d"
)

// DownloadRankTables lists the tables sharing the download row shape.
func DownloadRankTables() []string {
	return []string{TableDownloadRank, TableDownloadPercentRank, TableDownloadDeltaRank}
}

// RankStore is the interface any row-store backend must satisfy. Replace
// semantics: all existing rows for the rows' fetch date are removed before
// the new rows are inserted, so re-running a day never duplicates rows.
type RankStore interface {
	ReplaceDownloadRanks(table string, rows []*models.DownloadRankRow) error
	ReplaceAdvertiserRanks(table string, rows []*models.AdvertiserRankRow) error
	Close() error
}
