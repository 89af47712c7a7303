package mining

// Rule is one candidate implication between disjoint itemsets whose union
// is frequent.
type Rule struct {
	Antecedent Itemset
	Consequent Itemset
	Support    float64
	Confidence float64
	Lift       float64
}

// GenerateRules enumerates every (antecedent, consequent) split of each
// frequent itemset of size >= 2 and keeps the splits whose lift clears
// minLift.
//
// Every non-empty proper subset is a valid antecedent; the consequent is
// the complement. Antecedents and consequents are themselves frequent
// (anti-monotonicity), so their supports are always present in the
// frequent-itemset collection. A missing support indicates a broken miner
// and panics rather than being papered over with a zero guard.
func GenerateRules(frequent []FrequentItemset, minLift float64) []Rule {
	supportByKey := make(map[string]float64, len(frequent))
	for _, fi := range frequent {
		supportByKey[fi.Items.Key()] = fi.Support
	}

	var rules []Rule
	for _, fi := range frequent {
		n := len(fi.Items)
		if n < 2 {
			continue
		}
		// Bitmask over item positions: each non-zero, non-full mask selects
		// an antecedent.
		for mask := 1; mask < (1<<n)-1; mask++ {
			ante := make(Itemset, 0, n-1)
			cons := make(Itemset, 0, n-1)
			for i, it := range fi.Items {
				if mask&(1<<i) != 0 {
					ante = append(ante, it)
				} else {
					cons = append(cons, it)
				}
			}

			anteSup := mustSupport(supportByKey, ante)
			consSup := mustSupport(supportByKey, cons)
			confidence := fi.Support / anteSup
			lift := confidence / consSup
			if lift < minLift {
				continue
			}
			rules = append(rules, Rule{
				Antecedent: ante,
				Consequent: cons,
				Support:    fi.Support,
				Confidence: confidence,
				Lift:       lift,
			})
		}
	}
	return rules
}

func mustSupport(supportByKey map[string]float64, set Itemset) float64 {
	sup, ok := supportByKey[set.Key()]
	if !ok || sup == 0 {
		panic("mining: subset of a frequent itemset is not frequent: " + set.Key())
	}
	return sup
}
