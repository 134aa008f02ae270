package sensortower

import "encoding/json"

// FlexID decodes an identifier that the API returns as either a JSON string
// (unified hex ids) or a bare number (platform ids).
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// Entity holds per-platform estimate values inside a comparison entry. The
// API uses two naming schemes for the same measures depending on endpoint
// version, so each value has a fallback field.
type Entity struct {
	UnitsAbsolute         *float64 `json:"units_absolute"`
	Absolute              *float64 `json:"absolute"`
	ComparisonUnitsValue  *float64 `json:"comparison_units_value"`
	UnitsDelta            *float64 `json:"units_delta"`
	Delta                 *float64 `json:"delta"`
	UnitsTransformedDelta *float64 `json:"units_transformed_delta"`
	TransformedDelta      *float64 `json:"transformed_delta"`
}

// ComparisonEntry is one raw entry of a sales-report comparison ranking.
// For unified apps the values live in Entities (one per platform variant);
// otherwise they appear at the top level.
type ComparisonEntry struct {
	AppID    FlexID   `json:"app_id"`
	Entities []Entity `json:"entities"`

	UnitsAbsolute         *float64 `json:"units_absolute"`
	Absolute              *float64 `json:"absolute"`
	ComparisonUnitsValue  *float64 `json:"comparison_units_value"`
	UnitsDelta            *float64 `json:"units_delta"`
	Delta                 *float64 `json:"delta"`
	UnitsTransformedDelta *float64 `json:"units_transformed_delta"`
	TransformedDelta      *float64 `json:"transformed_delta"`
}

// AdvertiserEntry is one raw entry of the ad-intel top advertisers ranking.
type AdvertiserEntry struct {
	AppID         FlexID  `json:"app_id"`
	Name          string  `json:"name"`
	HumanizedName string  `json:"humanized_name"`
	PublisherName string  `json:"publisher_name"`
	IconURL       string  `json:"icon_url"`
	SOV           float64 `json:"sov"`
}

// AppInfo is the metadata resolved for an app id via the unified lookup.
type AppInfo struct {
	Name      string
	Publisher string
	IconURL   string
}

type appLookupResponse struct {
	Name                 string `json:"name"`
	IconURL              string `json:"icon_url"`
	UnifiedPublisherName string `json:"unified_publisher_name"`
	PublisherName        string `json:"publisher_name"`
	SubApps              []struct {
		Name string `json:"name"`
		OS   string `json:"os"`
	} `json:"sub_apps"`
}

type topAdvertisersResponse struct {
	Apps []AdvertiserEntry `json:"apps"`
}
