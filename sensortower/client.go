package sensortower

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sensortower-sync/config"
	"sensortower-sync/utils"
)

// ErrAPI wraps every failure talking to the SensorTower API: network errors,
// auth rejections, rate limiting and undecodable responses.
var ErrAPI = errors.New("sensortower: api request failed")

// RankingKind selects the comparison attribute the sales ranking is ordered
// by. The value is passed to the API verbatim.
type RankingKind string

const (
	// KindDownloads ranks by absolute downloads over the window.
	KindDownloads RankingKind = "absolute"
	// KindPercentGrowth ranks by download percent increase vs the previous
	// window.
	KindPercentGrowth RankingKind = "transformed_delta"
	// KindDownloadDelta ranks by absolute download change vs the previous
	// window.
	KindDownloadDelta RankingKind = "delta"
)

// Client talks to the SensorTower API. All calls are sequential; app lookups
// are paced to stay under the provider's request rate.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *utils.Logger
	pacer   *utils.Pacer
}

// NewClient creates a ready-to-use API client from the loaded configuration.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.SensorTowerBaseURL, "/"),
		apiKey:  cfg.SensorTowerAPIKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
		pacer:   utils.NewPacer(time.Duration(cfg.LookupPaceMs) * time.Millisecond),
	}
}

// FetchComparison fetches one sales-report comparison ranking for the given
// window, limited to the top `limit` unified apps in the US region.
func (c *Client) FetchComparison(ctx context.Context, kind RankingKind, w Window, limit int) ([]ComparisonEntry, error) {
	params := url.Values{}
	params.Set("comparison_attribute", string(kind))
	params.Set("time_range", "day")
	params.Set("measure", "units")
	params.Set("category", "0")
	params.Set("date", w.Start.Format(DateFormat))
	params.Set("end_date", w.End.Format(DateFormat))
	params.Set("device_type", "total")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("regions", "US")

	var entries []ComparisonEntry
	if err := c.get(ctx, "/v1/unified/sales_report_estimates_comparison_attributes", params, &entries); err != nil {
		return nil, err
	}
	c.logger.Info("[sensortower] Comparison ranking %q returned %d entries", kind, len(entries))
	return entries, nil
}

// FetchTopAdvertisers fetches the top advertisers by share of voice for the
// month ending at the window's last date, US, all networks.
func (c *Client) FetchTopAdvertisers(ctx context.Context, w Window, limit int) ([]AdvertiserEntry, error) {
	params := url.Values{}
	params.Set("role", "advertisers")
	params.Set("date", w.End.Format(DateFormat))
	params.Set("period", "month")
	params.Set("category", "0")
	params.Set("country", "US")
	params.Set("network", "All Networks")
	params.Set("limit", strconv.Itoa(limit))

	var resp topAdvertisersResponse
	if err := c.get(ctx, "/v1/unified/ad_intel/top_apps", params, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("[sensortower] Advertiser ranking returned %d entries", len(resp.Apps))
	return resp.Apps, nil
}

// LookupApp resolves name, publisher and icon for an app id. Lookups are
// best-effort: any failure logs a warning and falls back to "Unknown" so a
// missing profile never aborts the run.
func (c *Client) LookupApp(ctx context.Context, appID string) AppInfo {
	c.pacer.Wait()

	info := AppInfo{Name: "Unknown", Publisher: "Unknown"}

	var resp appLookupResponse
	if err := c.get(ctx, "/v1/unified/apps/"+url.PathEscape(appID), url.Values{}, &resp); err != nil {
		c.logger.Warn("[sensortower] App lookup failed for %s: %v", appID, err)
		return info
	}

	name := resp.Name
	if name == "" && len(resp.SubApps) > 0 {
		name = resp.SubApps[0].Name
	}
	if name != "" {
		info.Name = name
	}

	publisher := resp.UnifiedPublisherName
	if publisher == "" {
		publisher = resp.PublisherName
	}
	if publisher != "" {
		info.Publisher = publisher
	}

	info.IconURL = resp.IconURL
	return info
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("auth_token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrAPI, path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrAPI, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: GET %s: rate limited (429)", ErrAPI, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: GET %s: status %d: %s", ErrAPI, path, resp.StatusCode, bodySnippet(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: GET %s: decode response: %v", ErrAPI, path, err)
	}
	return nil
}

func bodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 300))
	return strings.TrimSpace(string(b))
}
