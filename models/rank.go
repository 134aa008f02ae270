package models

// DownloadRankRow is one entry of a download-based ranking, ready for
// storage. The same shape backs the absolute-downloads, percent-growth and
// download-delta tables; JSON tags match the destination column names and
// double as the PostgREST insert payload.
//
// Downloads, PreviousDownloads and DownloadDelta are daily averages over the
// ranking window (window total divided by the window length in days).
type DownloadRankRow struct {
	FetchDate         string  `json:"fetch_date"`
	PeriodStart       string  `json:"period_start"`
	PeriodEnd         string  `json:"period_end"`
	PrevPeriodStart   string  `json:"prev_period_start"`
	PrevPeriodEnd     string  `json:"prev_period_end"`
	Rank              int     `json:"rank"`
	AppID             string  `json:"app_id"`
	AppName           string  `json:"app_name"`
	Publisher         string  `json:"publisher"`
	IconURL           string  `json:"icon_url"`
	Downloads         int64   `json:"downloads"`
	PreviousDownloads int64   `json:"previous_downloads"`
	DownloadDelta     int64   `json:"download_delta"`
	DownloadPctChange float64 `json:"download_pct_change"`
}

// AdvertiserRankRow is one entry of the advertiser share-of-voice ranking.
type AdvertiserRankRow struct {
	FetchDate   string  `json:"fetch_date"`
	PeriodStart string  `json:"period_start"`
	Rank        int     `json:"rank"`
	AppID       string  `json:"app_id"`
	AppName     string  `json:"app_name"`
	Publisher   string  `json:"publisher"`
	IconURL     string  `json:"icon_url"`
	SOV         float64 `json:"sov"`
}

// RunReport summarizes one sync run across all destination tables.
type RunReport struct {
	FetchDate string
	Tables    []*TableResult

	// BiggestMover is the download row with the highest percent change seen
	// across all download-based tables in this run.
	BiggestMover *DownloadRankRow
}

// TableResult records what was written to a single destination table.
type TableResult struct {
	Table  string
	Rows   int
	Leader string
	Detail string
}
