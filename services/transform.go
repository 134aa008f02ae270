package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"sensortower-sync/models"
	"sensortower-sync/sensortower"
	"sensortower-sync/utils"
)

// ErrSchemaMismatch is returned when an API response is missing a required
// field or carries fewer entries than the ranking size. No partial rows are
// produced in that case.
var ErrSchemaMismatch = errors.New("transform: response schema mismatch")

// Transformer maps raw API entries to destination table rows. All methods
// are pure with respect to their inputs: identical entries yield identical
// rows.
type Transformer struct {
	logger *utils.Logger
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// DownloadRows builds the rows of a download-based ranking table. Ranks are
// assigned 1..limit in response order; download measures are aggregated
// across platform entities and stored as daily averages over the window.
func (t *Transformer) DownloadRows(entries []sensortower.ComparisonEntry, w sensortower.Window, fetchDate time.Time, limit int) ([]*models.DownloadRankRow, error) {
	if len(entries) < limit {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrSchemaMismatch, len(entries), limit)
	}

	days := w.Days()
	rows := make([]*models.DownloadRankRow, 0, limit)

	for i, e := range entries[:limit] {
		if e.AppID == "" {
			return nil, fmt.Errorf("%w: entry at rank %d has no app_id", ErrSchemaMismatch, i+1)
		}

		agg, err := aggregateEntry(e, days)
		if err != nil {
			return nil, err
		}

		rows = append(rows, &models.DownloadRankRow{
			FetchDate:         fetchDate.Format(sensortower.DateFormat),
			PeriodStart:       w.Start.Format(sensortower.DateFormat),
			PeriodEnd:         w.End.Format(sensortower.DateFormat),
			PrevPeriodStart:   w.PrevStart.Format(sensortower.DateFormat),
			PrevPeriodEnd:     w.PrevEnd.Format(sensortower.DateFormat),
			Rank:              i + 1,
			AppID:             string(e.AppID),
			Downloads:         agg.downloads,
			PreviousDownloads: agg.previous,
			DownloadDelta:     agg.delta,
			DownloadPctChange: round2(agg.pctChange * 100),
		})
	}

	t.logger.Info("[transform] Built %d download rank rows", len(rows))
	return rows, nil
}

// AdvertiserRows builds the rows of the advertiser share-of-voice table.
func (t *Transformer) AdvertiserRows(entries []sensortower.AdvertiserEntry, w sensortower.Window, fetchDate time.Time, limit int) ([]*models.AdvertiserRankRow, error) {
	if len(entries) < limit {
		return nil, fmt.Errorf("%w: got %d advertisers, want %d", ErrSchemaMismatch, len(entries), limit)
	}

	rows := make([]*models.AdvertiserRankRow, 0, limit)

	for i, e := range entries[:limit] {
		if e.AppID == "" {
			return nil, fmt.Errorf("%w: advertiser at rank %d has no app_id", ErrSchemaMismatch, i+1)
		}

		name := e.Name
		if name == "" {
			name = e.HumanizedName
		}
		if name == "" {
			name = "Unknown"
		}
		publisher := e.PublisherName
		if publisher == "" {
			publisher = "Unknown"
		}

		rows = append(rows, &models.AdvertiserRankRow{
			FetchDate:   fetchDate.Format(sensortower.DateFormat),
			PeriodStart: w.Start.Format(sensortower.DateFormat),
			Rank:        i + 1,
			AppID:       string(e.AppID),
			AppName:     name,
			Publisher:   publisher,
			IconURL:     e.IconURL,
			SOV:         e.SOV,
		})
	}

	t.logger.Info("[transform] Built %d advertiser rank rows", len(rows))
	return rows, nil
}

type aggregated struct {
	downloads int64
	previous  int64
	delta     int64
	pctChange float64
}

// aggregateEntry sums download measures across the per-platform entities of
// a unified app (iOS + Android + lite variants), falling back to top-level
// fields when no entities array is present, and converts window totals to
// daily averages. Percent change is computed from totals; it is identical
// for totals and averages.
func aggregateEntry(e sensortower.ComparisonEntry, days int) (aggregated, error) {
	if len(e.Entities) == 0 {
		total, ok := firstSet(e.UnitsAbsolute, e.Absolute)
		if !ok {
			return aggregated{}, fmt.Errorf("%w: entry %s carries no downloads field", ErrSchemaMismatch, e.AppID)
		}
		delta, _ := firstSet(e.UnitsDelta, e.Delta)
		pct, _ := firstSet(e.UnitsTransformedDelta, e.TransformedDelta)
		return aggregated{
			downloads: dailyAvg(total, days),
			previous:  dailyAvg(orZero(e.ComparisonUnitsValue), days),
			delta:     dailyAvg(delta, days),
			pctChange: pct,
		}, nil
	}

	var total, previous, delta float64
	seen := false
	for _, ent := range e.Entities {
		if v, ok := firstSet(ent.UnitsAbsolute, ent.Absolute); ok {
			total += v
			seen = true
		}
		previous += orZero(ent.ComparisonUnitsValue)
		if v, ok := firstSet(ent.UnitsDelta, ent.Delta); ok {
			delta += v
		}
	}
	if !seen {
		return aggregated{}, fmt.Errorf("%w: entry %s entities carry no downloads field", ErrSchemaMismatch, e.AppID)
	}

	var pct float64
	if previous > 0 {
		pct = delta / previous
	} else {
		pct, _ = firstSet(e.Entities[0].UnitsTransformedDelta, e.Entities[0].TransformedDelta)
	}

	return aggregated{
		downloads: dailyAvg(total, days),
		previous:  dailyAvg(previous, days),
		delta:     dailyAvg(delta, days),
		pctChange: pct,
	}, nil
}

func dailyAvg(total float64, days int) int64 {
	return int64(math.Round(total / float64(days)))
}

func firstSet(vals ...*float64) (float64, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return 0, false
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
