package recorder

import "time"

// Trigger says what caused a forecast to run.
type Trigger string

const (
	TriggerDashboard Trigger = "DASHBOARD"
	TriggerAPI       Trigger = "API"
	TriggerSchedule  Trigger = "SCHEDULE"
	TriggerCommand   Trigger = "COMMAND"
	TriggerCLI       Trigger = "CLI"
)

// ForecastEvent records one forecast attempt. Failed attempts carry ErrorKind
// and leave the numeric fields zero.
type ForecastEvent struct {
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
	Code          string    `json:"code"`
	Trigger       Trigger   `json:"trigger"`
	TargetDate    time.Time `json:"target_date"`
	LastClose     float64   `json:"last_close"`
	Forecast      float64   `json:"forecast"`
	PercentChange float64   `json:"percent_change"`
	RMSE          float64   `json:"rmse"`
	Clamped       bool      `json:"clamped"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	ErrorMsg      string    `json:"error_msg,omitempty"`
}

// Recorder persists forecast history for later review.
type Recorder interface {
	RecordForecast(evt *ForecastEvent) error
	RecentForecasts(code string, limit int) ([]ForecastEvent, error)
	Close() error
}
