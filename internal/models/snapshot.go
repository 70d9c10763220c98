package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one complete load of the opportunity list
type Snapshot struct {
	Records  []OpportunityRecord
	Source   string
	LoadedAt time.Time
}

// Lookup finds a record by ticker
func (s Snapshot) Lookup(ticker string) (OpportunityRecord, bool) {
	for _, rec := range s.Records {
		if rec.Ticker == ticker {
			return rec, true
		}
	}
	return OpportunityRecord{}, false
}

// Snapshot event type constants
const (
	EventSnapshotLoaded = "SNAPSHOT_LOADED"
	EventSnapshotFailed = "SNAPSHOT_FAILED"
	EventDataPublished  = "DATA_PUBLISHED"
)

// SnapshotEvent represents a Kafka event describing a load attempt
type SnapshotEvent struct {
	EventType   string    `json:"event_type"`
	Source      string    `json:"source"`
	RecordCount int       `json:"record_count"`
	Income      int       `json:"income_count"`
	Protection  int       `json:"protection_count"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// DataPublishedEvent is announced by the snapshot generator when a new file is available
type DataPublishedEvent struct {
	EventType   string     `json:"event_type"`
	Source      string     `json:"source"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// TickerHistoryPoint is one archived observation of a ticker
type TickerHistoryPoint struct {
	SnapshotID int64           `json:"snapshot_id"`
	Ticker     string          `json:"ticker"`
	Price      decimal.Decimal `json:"price"`
	IVRank     float64         `json:"iv_rank"`
	Skew       float64         `json:"skew"`
	Strategy   Strategy        `json:"strategy"`
	LoadedAt   time.Time       `json:"loaded_at"`
}
