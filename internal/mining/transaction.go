// Package mining implements the delay-rule discovery pipeline: transaction
// encoding of categorical flight features, Apriori frequent-itemset search,
// association-rule derivation, and delay-specific filtering/formatting.
//
// The pipeline is pure computation: no database, no HTTP, no goroutines.
// The analysis package owns scheduling and persistence.
package mining

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skylens/flightpulse/internal/domain"
)

// Item is one (column, value) attribute token.
type Item struct {
	Column string
	Value  string
}

// Token renders the item in its canonical "column=value" form.
func (i Item) Token() string { return i.Column + "=" + i.Value }

// IsDelay reports whether the item belongs to the delay_category column.
func (i Item) IsDelay() bool { return i.Column == domain.ColDelayCategory }

// Transaction is the set of items encoded from one feature record. Items
// are keyed by token; one item per column by construction.
type Transaction map[string]Item

// Itemset is an ordered set of items. Items are kept sorted by token so a
// canonical key can be derived cheaply.
type Itemset []Item

// Key returns the canonical identity of the itemset, independent of the
// order items were added in.
func (s Itemset) Key() string {
	tokens := make([]string, len(s))
	for i, it := range s {
		tokens[i] = it.Token()
	}
	return strings.Join(tokens, "|")
}

func (s Itemset) sorted() Itemset {
	out := make(Itemset, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Token() < out[j].Token() })
	return out
}

// ContainedIn reports whether every item of the set occurs in t.
func (s Itemset) ContainedIn(t Transaction) bool {
	for _, it := range s {
		if _, ok := t[it.Token()]; !ok {
			return false
		}
	}
	return true
}

// EncodingError reports a feature record that does not match the encoding
// schema. It aborts the whole mining pass; records are never silently
// partially encoded.
type EncodingError struct {
	Index  int
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode record %d: %s", e.Index, e.Reason)
}

// Encode converts feature records into transactions, one item per non-empty
// column. The column set is fixed by the caller (normally
// domain.FeatureColumns), never inferred from the data.
func Encode(records []domain.FeatureRecord, columns []string) ([]Transaction, error) {
	txns := make([]Transaction, 0, len(records))
	for idx, rec := range records {
		values := rec.Columns()
		txn := make(Transaction, len(columns))
		for _, col := range columns {
			val, ok := values[col]
			if !ok {
				return nil, &EncodingError{Index: idx, Reason: fmt.Sprintf("unknown column %q", col)}
			}
			if val == "" {
				continue
			}
			if col == domain.ColDelayCategory && !domain.DelayCategory(val).Valid() {
				return nil, &EncodingError{Index: idx, Reason: fmt.Sprintf("invalid delay category %q", val)}
			}
			it := Item{Column: col, Value: val}
			txn[it.Token()] = it
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
