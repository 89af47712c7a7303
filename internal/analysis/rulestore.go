// Package analysis owns the delay-rule mining job lifecycle: triggering,
// single-flight background execution, and the persisted rule store the
// query path reads from.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/skylens/flightpulse/internal/domain"
)

// ErrNotComputed is returned by Top before the first successful run has
// persisted a result.
var ErrNotComputed = errors.New("delay rules not computed yet")

var csvHeader = []string{"antecedents", "consequents", "support", "confidence", "lift", "formatted_rule"}

// RuleStore persists the ranked delay-rule sequence as a CSV file and
// serves top-N reads from it. Writes replace the whole file atomically
// (temp file + rename), so readers never observe a partial result.
type RuleStore struct {
	path string
	mu   sync.RWMutex
}

// NewRuleStore creates a store backed by the given file path. The parent
// directory is created if missing.
func NewRuleStore(path string) (*RuleStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create rule store dir: %w", err)
	}
	return &RuleStore{path: path}, nil
}

// Replace persists rules wholesale, discarding any previous result. The
// caller is responsible for ordering; the store preserves it.
func (s *RuleStore) Replace(rules []domain.DelayRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rules-*.csv")
	if err != nil {
		return fmt.Errorf("create temp rules file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write rules header: %w", err)
	}
	for _, r := range rules {
		row := []string{
			strings.Join(r.Antecedents, ";"),
			r.Consequent,
			strconv.FormatFloat(r.Support, 'g', -1, 64),
			strconv.FormatFloat(r.Confidence, 'g', -1, 64),
			strconv.FormatFloat(r.Lift, 'g', -1, 64),
			r.Text,
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write rule row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush rules file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp rules file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace rules file: %w", err)
	}
	return nil
}

// Top returns the first n persisted rules. n greater than the number of
// persisted rules returns everything available; n below 1 is a caller bug
// surfaced as an error so handlers can map it to a 400.
func (s *RuleStore) Top(n int) ([]domain.DelayRule, error) {
	if n < 1 {
		return nil, fmt.Errorf("top_n must be at least 1, got %d", n)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotComputed
	}
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("rules file is missing its header")
	}

	rules := make([]domain.DelayRule, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(rules) == n {
			break
		}
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("malformed rules row: %d columns", len(row))
		}
		support, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse support %q: %w", row[2], err)
		}
		confidence, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse confidence %q: %w", row[3], err)
		}
		lift, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parse lift %q: %w", row[4], err)
		}
		var antecedents []string
		if row[0] != "" {
			antecedents = strings.Split(row[0], ";")
		}
		rules = append(rules, domain.DelayRule{
			Antecedents: antecedents,
			Consequent:  row[1],
			Support:     support,
			Confidence:  confidence,
			Lift:        lift,
			Text:        row[5],
		})
	}
	return rules, nil
}

// Computed reports whether a successful run has ever persisted a result.
func (s *RuleStore) Computed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := os.Stat(s.path)
	return err == nil
}
