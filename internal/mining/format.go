package mining

import (
	"sort"
	"strings"

	"github.com/skylens/flightpulse/internal/domain"
)

var severityLabels = map[domain.DelayCategory]string{
	domain.DelayShort:    "a short delay",
	domain.DelayMedium:   "a moderate delay",
	domain.DelayLong:     "a long delay",
	domain.DelayVeryLong: "a very long delay",
}

// FilterDelayRules keeps only rules whose consequent is a single non-trivial
// delay category, renders each survivor as a sentence, and returns the
// result sorted by (lift desc, confidence desc, text asc). The final tie on
// text keeps repeated runs over the same dataset byte-identical.
func FilterDelayRules(rules []Rule) []domain.DelayRule {
	var out []domain.DelayRule
	for _, r := range rules {
		if len(r.Consequent) != 1 {
			continue
		}
		cons := r.Consequent[0]
		if !cons.IsDelay() || domain.DelayCategory(cons.Value) == domain.DelayNone {
			continue
		}

		ante := r.Antecedent.sorted()
		antecedents := make([]string, len(ante))
		conditions := make([]string, len(ante))
		for i, it := range ante {
			antecedents[i] = it.Token()
			conditions[i] = describeCondition(it)
		}

		out = append(out, domain.DelayRule{
			Antecedents: antecedents,
			Consequent:  cons.Token(),
			Support:     r.Support,
			Confidence:  r.Confidence,
			Lift:        r.Lift,
			Text:        "if " + joinConditions(conditions) + ", then " + describeSeverity(cons),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Lift != out[j].Lift {
			return out[i].Lift > out[j].Lift
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// describeCondition maps one antecedent item to its sentence fragment. The
// switch is exhaustive over the known feature columns; anything else falls
// through to the raw value so an unexpected column never fails a run.
func describeCondition(it Item) string {
	switch it.Column {
	case domain.ColDayOfWeek:
		return "on " + strings.ToLower(it.Value)
	case domain.ColTimeOfDay:
		return "in the " + strings.ToLower(it.Value)
	case domain.ColSeason:
		return "in " + strings.ToLower(it.Value)
	case domain.ColDepartureAirport:
		return "departure airport " + it.Value
	case domain.ColArrivalAirport:
		return "arrival airport " + it.Value
	case domain.ColAirlineCode:
		return "airline " + it.Value
	default:
		return it.Value
	}
}

func describeSeverity(it Item) string {
	if label, ok := severityLabels[domain.DelayCategory(it.Value)]; ok {
		return label
	}
	return it.Value
}

// joinConditions joins fragments with commas and "and" before the last one.
func joinConditions(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}
