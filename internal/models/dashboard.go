package models

import "time"

type Status string

const (
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

// Dashboard section identifiers, also used as element ids by the UI.
const (
	SectionPreview    = "preview"
	SectionMetrics    = "metrics"
	SectionSummary    = "summary"
	SectionTrend      = "trend"
	SectionComparison = "comparison"
)

const PreviewRows = 5

// ViewModel is the result of one render pass over the cached dataset.
type ViewModel struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Criteria FilterCriteria `json:"criteria"`

	Regions  []string   `json:"regions"`
	MinDate  *time.Time `json:"min_date,omitempty"`
	MaxDate  *time.Time `json:"max_date,omitempty"`
	Columns  []string   `json:"columns"`
	HasDate  bool       `json:"has_date"`
	RowCount int        `json:"row_count"`
	Preview  [][]string `json:"preview"`

	Metrics    *Metrics      `json:"metrics,omitempty"`
	Summary    *SummaryStats `json:"summary,omitempty"`
	Trend      *Series       `json:"trend,omitempty"`
	Labour     *Series       `json:"labour_trend,omitempty"`
	Comparison []Series      `json:"comparison,omitempty"`
	Ranking    GroupSummary  `json:"ranking,omitempty"`

	// Messages holds inline notices keyed by section.
	Messages map[string]string `json:"messages,omitempty"`
	Notices  []string          `json:"notices,omitempty"`

	DownloadName string    `json:"download_name,omitempty"`
	LoadedAt     time.Time `json:"loaded_at,omitzero"`
}

type Metrics struct {
	AvgUnemploymentRate        float64  `json:"avg_unemployment_rate"`
	AvgLabourParticipationRate *float64 `json:"avg_labour_participation_rate,omitempty"`
	AvgEstimatedEmployed       *float64 `json:"avg_estimated_employed,omitempty"`
}

func (vm *ViewModel) SetMessage(section, msg string) {
	if vm.Messages == nil {
		vm.Messages = make(map[string]string)
	}
	vm.Messages[section] = msg
}

func (vm *ViewModel) Ready() bool {
	return vm.Status == StatusReady
}
