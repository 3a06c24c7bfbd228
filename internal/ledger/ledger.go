// Package ledger records application outcomes as append-only per-location
// CSV files. The ledger is advisory: a failed write is logged and dropped so
// bookkeeping can never abort a run.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"autoapply/internal/logging"
	"autoapply/pkg/models"
)

// Ledger accumulates one run's outcome records and streams them to disk
type Ledger struct {
	dir    string
	logger logging.Logger

	mu      sync.Mutex
	seen    map[string]struct{}
	records []models.OutcomeRecord
}

func New(dir string, logger logging.Logger) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}
	return &Ledger{
		dir:    dir,
		logger: logger,
		seen:   make(map[string]struct{}),
	}, nil
}

// Append records one outcome. Duplicate links within a run are dropped.
// Disk errors are logged, never returned.
func (l *Ledger) Append(rec models.OutcomeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[rec.Listing.CanonicalLink]; dup {
		return
	}
	l.seen[rec.Listing.CanonicalLink] = struct{}{}
	l.records = append(l.records, rec)

	// Skips stay in the in-run record; only applied and failed outcomes
	// are persisted.
	if rec.Result == models.ResultSkipped {
		return
	}

	if err := l.writeRow(rec); err != nil {
		l.logger.Error("Failed to write ledger row", map[string]interface{}{
			"link":  rec.Listing.CanonicalLink,
			"error": err.Error(),
		})
	}
}

// Records returns a copy of the run's outcome records in append order
func (l *Ledger) Records() []models.OutcomeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.OutcomeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Counts tallies the run's outcomes by result
func (l *Ledger) Counts() (applied, failed, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.records {
		switch rec.Result {
		case models.ResultApplied:
			applied++
		case models.ResultSkipped:
			skipped++
		default:
			failed++
		}
	}
	return
}

// writeRow appends one CSV row to the location's outcome file, one stream
// for applied outcomes and one for failed ones.
func (l *Ledger) writeRow(rec models.OutcomeRecord) error {
	prefix := "failed"
	if rec.Result == models.ResultApplied {
		prefix = "applied"
	}
	path := filepath.Join(l.dir, fmt.Sprintf("%s_%s.csv", prefix, slug(rec.Task.Location)))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		if err := w.Write([]string{"company", "jobTitle", "link", "location"}); err != nil {
			return err
		}
	}

	if err := w.Write([]string{rec.Listing.Company, rec.Listing.Title, rec.Listing.CanonicalLink, rec.Listing.Location}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// slug turns a location into a stable filename fragment
func slug(location string) string {
	location = strings.ToLower(strings.TrimSpace(location))
	var b strings.Builder
	for _, r := range location {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == ',' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anywhere"
	}
	return b.String()
}
