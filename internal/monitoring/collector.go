// Package monitoring summarizes run ledger health and raises alerts when
// ingestion runs start failing, stall or stop producing records.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sentiment-cli/internal/model"
	"github.com/sells-group/sentiment-cli/internal/store"
)

// scanLimit bounds how many runs one snapshot reads.
const scanLimit = 10000

// KindMetrics holds per-kind counts within the lookback window.
type KindMetrics struct {
	Total  int `json:"total"`
	Done   int `json:"done"`
	Failed int `json:"failed"`
	Empty  int `json:"empty"`
	Rows   int `json:"rows"`
}

// MetricsSnapshot holds a point-in-time view of ledger health.
type MetricsSnapshot struct {
	Total    int     `json:"total"`
	Done     int     `json:"done"`
	Failed   int     `json:"failed"`
	InFlight int     `json:"in_flight"`
	FailRate float64 `json:"fail_rate"`
	Rows     int     `json:"rows"`

	// Stale counts in-flight runs not updated within the stale window.
	Stale int `json:"stale"`
	// Empty counts done runs that wrote no rows.
	Empty int `json:"empty"`

	ByKind map[model.RunKind]*KindMetrics `json:"by_kind"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the run ledger.
type Collector struct {
	store      store.Store
	staleAfter time.Duration
	now        func() time.Time
}

// NewCollector creates a metrics collector. In-flight runs idle for longer
// than staleAfter are counted as stale; zero disables the check.
func NewCollector(st store.Store, staleAfter time.Duration) *Collector {
	return &Collector{store: st, staleAfter: staleAfter, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		ByKind:        make(map[model.RunKind]*KindMetrics),
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        scanLimit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	for _, r := range runs {
		km := snap.ByKind[r.Kind]
		if km == nil {
			km = &KindMetrics{}
			snap.ByKind[r.Kind] = km
		}
		snap.Total++
		km.Total++

		switch r.Status {
		case model.RunStatusDone:
			snap.Done++
			km.Done++
			snap.Rows += r.RowsWritten
			km.Rows += r.RowsWritten
			if r.RowsWritten == 0 {
				snap.Empty++
				km.Empty++
			}
		case model.RunStatusFailed:
			snap.Failed++
			km.Failed++
		default:
			snap.InFlight++
			if c.staleAfter > 0 && now.Sub(r.UpdatedAt) > c.staleAfter {
				snap.Stale++
			}
		}
	}

	if finished := snap.Done + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	return snap, nil
}
