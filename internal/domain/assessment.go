package domain

import "time"

// RiskLevel is the banded reading of a damage score.
type RiskLevel string

// RiskLevel enum values.
const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

func (r RiskLevel) String() string { return string(r) }

// SeverityDistribution counts events per severity.
type SeverityDistribution struct {
	Minor    int `json:"minor"`
	Moderate int `json:"moderate"`
	Severe   int `json:"severe"`
}

// ScoreFactors are the inputs a damage score was derived from.
type ScoreFactors struct {
	EventCount           int                  `json:"event_count"`
	MaxHailSize          float64              `json:"max_hail_size"`
	RecentEventCount     int                  `json:"recent_event_count"`
	CumulativeExposure   float64              `json:"cumulative_exposure"`
	SeverityDistribution SeverityDistribution `json:"severity_distribution"`
	RecencyScore         float64              `json:"recency_score"`
}

// ScoreComponents records the points each term contributed before rounding.
type ScoreComponents struct {
	EventCount         float64 `json:"event_count"`
	MaxHailSize        float64 `json:"max_hail_size"`
	Recency            float64 `json:"recency"`
	CumulativeExposure float64 `json:"cumulative_exposure"`
	Severity           float64 `json:"severity"`
}

// DamageScore is a 0–100 composite risk metric for one location.
type DamageScore struct {
	Score      int             `json:"score"`
	RiskLevel  RiskLevel       `json:"risk_level"`
	Factors    ScoreFactors    `json:"factors"`
	Components ScoreComponents `json:"components"`
	Summary    string          `json:"summary"`
	Color      string          `json:"color"`
}

// HotZone is one ranked grid cell of storm activity.
type HotZone struct {
	ID             string       `json:"id"`
	CenterLat      float64      `json:"center_lat"`
	CenterLng      float64      `json:"center_lng"`
	Intensity      int          `json:"intensity"`
	EventCount     int          `json:"event_count"`
	AvgHailSize    *float64     `json:"avg_hail_size,omitempty"`
	MaxHailSize    *float64     `json:"max_hail_size,omitempty"`
	LastEventDate  time.Time    `json:"last_event_date"`
	Recommendation string       `json:"recommendation"`
	RadiusMiles    float64      `json:"radius_miles"`
	Events         []StormEvent `json:"events"`
}

// ProviderState describes how one provider took part in an aggregation.
type ProviderState string

// ProviderState enum values.
const (
	ProviderOK            ProviderState = "ok"
	ProviderFailed        ProviderState = "failed"
	ProviderTimeout       ProviderState = "timeout"
	ProviderNotConfigured ProviderState = "not_configured"
	ProviderAbandoned     ProviderState = "abandoned"
)

// ProviderStatus is one provider's outcome for a request.
type ProviderStatus struct {
	Name       string        `json:"name"`
	State      ProviderState `json:"state"`
	EventCount int           `json:"event_count"`
}

// SearchArea is the circle the events were requested for.
type SearchArea struct {
	Center      Coordinates `json:"center"`
	RadiusMiles float64     `json:"radius_miles"`
}

// Narrative holds the report prose.
type Narrative struct {
	Full      string `json:"full"`
	Executive string `json:"executive"`
	HTML      string `json:"html,omitempty"`
}

// AssessmentStatus tells consumers whether an assessment carries results.
type AssessmentStatus string

// AssessmentStatus enum values.
const (
	StatusOK              AssessmentStatus = "ok"
	StatusAddressNotFound AssessmentStatus = "address_not_found"
)

// Assessment is the engine's hand-off to the report assembler.
type Assessment struct {
	RequestID   string           `json:"request_id"`
	Status      AssessmentStatus `json:"status"`
	Address     *AddressParts    `json:"address,omitempty"`
	Geocoded    *GeocodingResult `json:"geocoded,omitempty"`
	SearchArea  SearchArea       `json:"search_area"`
	Events      []StormEvent     `json:"events"`
	DataSources []string         `json:"data_sources"`
	Providers   []ProviderStatus `json:"providers"`
	Message     string           `json:"message"`
	Score       *DamageScore     `json:"damage_score,omitempty"`
	HotZones    []HotZone        `json:"hot_zones,omitempty"`
	Narrative   *Narrative       `json:"narrative,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}
