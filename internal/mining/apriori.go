package mining

import "sort"

// Config bounds the frequent-itemset search.
type Config struct {
	// MinSupport is the minimum fraction of transactions an itemset must
	// occur in, in (0,1].
	MinSupport float64
	// MaxLen is the largest itemset size considered.
	MaxLen int
	// MaxItems caps the number of distinct non-delay single items admitted
	// into the search. Items are ordered (support desc, token asc) before
	// truncation so the cut is deterministic. Delay-category items are
	// always kept; without them no rule can be produced.
	MaxItems int
}

// DefaultConfig mirrors the production mining thresholds.
func DefaultConfig() Config {
	return Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000}
}

// FrequentItemset is an itemset whose support cleared Config.MinSupport.
type FrequentItemset struct {
	Items   Itemset
	Support float64
}

// MineFrequent runs a level-wise Apriori search over the transactions and
// returns every itemset with support >= cfg.MinSupport and size <=
// cfg.MaxLen, in deterministic order: size ascending, singles by
// (support desc, token asc), larger sets by canonical key.
//
// Single items below the support floor are discarded before any candidate
// generation; a size-k candidate is only counted if all of its (k-1)-subsets
// are already frequent. An empty result is a valid outcome, not an error.
func MineFrequent(txns []Transaction, cfg Config) []FrequentItemset {
	total := len(txns)
	if total == 0 || cfg.MinSupport <= 0 || cfg.MaxLen < 1 {
		return nil
	}

	singles := frequentSingles(txns, cfg)
	if len(singles) == 0 {
		return nil
	}

	// Support of every frequent itemset found so far, keyed by canonical
	// key. Drives the anti-monotonic subset check.
	supportByKey := make(map[string]float64, len(singles))

	var result []FrequentItemset
	level := make([]FrequentItemset, 0, len(singles))
	for _, fi := range singles {
		supportByKey[fi.Items.Key()] = fi.Support
		level = append(level, fi)
	}
	result = append(result, level...)

	for k := 2; k <= cfg.MaxLen && len(level) > 0; k++ {
		var next []FrequentItemset
		seen := make(map[string]bool)

		for _, prev := range level {
			for _, single := range singles {
				cand, ok := extend(prev.Items, single.Items[0])
				if !ok {
					continue
				}
				key := cand.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				if !subsetsFrequent(cand, supportByKey) {
					continue
				}
				sup := support(cand, txns)
				if sup < cfg.MinSupport {
					continue
				}
				supportByKey[key] = sup
				next = append(next, FrequentItemset{Items: cand, Support: sup})
			}
		}

		sort.Slice(next, func(i, j int) bool { return next[i].Items.Key() < next[j].Items.Key() })
		result = append(result, next...)
		level = next
	}

	return result
}

// frequentSingles counts every individual item, drops those below the
// support floor, orders the survivors (support desc, token asc) and applies
// the non-delay item cap.
func frequentSingles(txns []Transaction, cfg Config) []FrequentItemset {
	total := float64(len(txns))
	counts := make(map[string]int)
	items := make(map[string]Item)
	for _, txn := range txns {
		for token, it := range txn {
			counts[token]++
			items[token] = it
		}
	}

	var singles []FrequentItemset
	for token, c := range counts {
		sup := float64(c) / total
		if sup < cfg.MinSupport {
			continue
		}
		singles = append(singles, FrequentItemset{
			Items:   Itemset{items[token]},
			Support: sup,
		})
	}

	sort.Slice(singles, func(i, j int) bool {
		if singles[i].Support != singles[j].Support {
			return singles[i].Support > singles[j].Support
		}
		return singles[i].Items.Key() < singles[j].Items.Key()
	})

	if cfg.MaxItems > 0 {
		kept := singles[:0]
		nonDelay := 0
		for _, fi := range singles {
			if !fi.Items[0].IsDelay() {
				if nonDelay >= cfg.MaxItems {
					continue
				}
				nonDelay++
			}
			kept = append(kept, fi)
		}
		singles = kept
	}
	return singles
}

// extend appends item to set if the result is a valid candidate: the item's
// token must sort after every token already in the set (so each candidate
// is generated exactly once) and its column must not already be present
// (one item per column per transaction makes such sets unsupportable).
func extend(set Itemset, item Item) (Itemset, bool) {
	token := item.Token()
	for _, it := range set {
		if it.Token() >= token || it.Column == item.Column {
			return nil, false
		}
	}
	cand := make(Itemset, len(set), len(set)+1)
	copy(cand, set)
	return append(cand, item), true
}

// subsetsFrequent checks that every (k-1)-subset of cand is frequent.
func subsetsFrequent(cand Itemset, supportByKey map[string]float64) bool {
	if len(cand) <= 2 {
		// All 1-subsets come from the frequent-singles list by construction.
		return true
	}
	sub := make(Itemset, 0, len(cand)-1)
	for drop := range cand {
		sub = sub[:0]
		for i, it := range cand {
			if i != drop {
				sub = append(sub, it)
			}
		}
		if _, ok := supportByKey[sub.Key()]; !ok {
			return false
		}
	}
	return true
}

// support computes the exact fraction of transactions containing the set.
func support(set Itemset, txns []Transaction) float64 {
	hits := 0
	for _, txn := range txns {
		if set.ContainedIn(txn) {
			hits++
		}
	}
	return float64(hits) / float64(len(txns))
}
