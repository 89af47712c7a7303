package mining

import (
	"testing"

	"github.com/skylens/flightpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seasonDelayRecords builds records carrying only a season and a delay
// category; the remaining feature columns stay empty and must not encode.
func seasonDelayRecords(season string, category domain.DelayCategory, n int) []domain.FeatureRecord {
	recs := make([]domain.FeatureRecord, n)
	for i := range recs {
		recs[i] = domain.FeatureRecord{Season: season, DelayCategory: category}
	}
	return recs
}

// winterScenario is the canonical punctuality dataset: 100 flights, 60 in
// winter, 20 with a long delay, 18 with both.
func winterScenario(t *testing.T) []Transaction {
	t.Helper()
	var recs []domain.FeatureRecord
	recs = append(recs, seasonDelayRecords("winter", domain.DelayLong, 18)...)
	recs = append(recs, seasonDelayRecords("winter", domain.DelayNone, 42)...)
	recs = append(recs, seasonDelayRecords("summer", domain.DelayLong, 2)...)
	recs = append(recs, seasonDelayRecords("summer", domain.DelayNone, 38)...)

	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)
	require.Len(t, txns, 100)
	return txns
}

func TestEncodeOneItemPerColumn(t *testing.T) {
	recs := []domain.FeatureRecord{{
		DayOfWeek:        "Monday",
		TimeOfDay:        "Morning",
		Season:           "Winter",
		DepartureAirport: "SVO",
		ArrivalAirport:   "LED",
		AirlineCode:      "SU",
		DelayCategory:    domain.DelayShort,
	}}

	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Len(t, txns[0], 7)
	assert.Contains(t, txns[0], "season=Winter")
	assert.Contains(t, txns[0], "delay_category=short")
}

func TestEncodeSkipsEmptyColumns(t *testing.T) {
	recs := []domain.FeatureRecord{{Season: "winter", DelayCategory: domain.DelayLong}}

	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)
	require.Len(t, txns[0], 2)
}

func TestEncodeRejectsInvalidDelayCategory(t *testing.T) {
	recs := []domain.FeatureRecord{
		{Season: "winter", DelayCategory: domain.DelayLong},
		{Season: "summer", DelayCategory: "catastrophic"},
	}

	_, err := Encode(recs, domain.FeatureColumns)
	require.Error(t, err)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, 1, encErr.Index)
}

func TestEncodeRejectsUnknownColumn(t *testing.T) {
	recs := []domain.FeatureRecord{{Season: "winter"}}

	_, err := Encode(recs, []string{"season", "weather"})
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
}

func TestMineFrequentEmptyDataset(t *testing.T) {
	assert.Empty(t, MineFrequent(nil, DefaultConfig()))
	assert.Empty(t, MineFrequent([]Transaction{}, DefaultConfig()))
}

func TestMineFrequentNoSurvivors(t *testing.T) {
	// Every item unique: singleton supports of 1/4 all fall below the floor.
	recs := []domain.FeatureRecord{
		{Season: "winter"}, {Season: "summer"}, {Season: "spring"}, {Season: "autumn"},
	}
	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)

	freq := MineFrequent(txns, Config{MinSupport: 0.5, MaxLen: 4, MaxItems: 1000})
	assert.Empty(t, freq)
}

func TestMineFrequentScenarioSupports(t *testing.T) {
	txns := winterScenario(t)
	freq := MineFrequent(txns, Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000})

	bySupport := map[string]float64{}
	for _, fi := range freq {
		bySupport[fi.Items.Key()] = fi.Support
	}

	assert.InDelta(t, 0.60, bySupport["season=winter"], 1e-9)
	assert.InDelta(t, 0.20, bySupport["delay_category=long"], 1e-9)
	assert.InDelta(t, 0.18, bySupport["delay_category=long|season=winter"], 1e-9)
}

func TestMineFrequentAntiMonotonicity(t *testing.T) {
	var recs []domain.FeatureRecord
	for i := 0; i < 40; i++ {
		recs = append(recs, domain.FeatureRecord{
			DayOfWeek:     []string{"Monday", "Friday"}[i%2],
			TimeOfDay:     []string{"morning", "evening"}[i%2],
			Season:        "winter",
			AirlineCode:   "SU",
			DelayCategory: []domain.DelayCategory{domain.DelayLong, domain.DelayNone, domain.DelayShort, domain.DelayNone}[i%4],
		})
	}
	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)

	cfg := Config{MinSupport: 0.2, MaxLen: 4, MaxItems: 1000}
	freq := MineFrequent(txns, cfg)
	require.NotEmpty(t, freq)

	frequent := map[string]bool{}
	for _, fi := range freq {
		frequent[fi.Items.Key()] = true
		assert.GreaterOrEqual(t, fi.Support, cfg.MinSupport)
		assert.LessOrEqual(t, len(fi.Items), cfg.MaxLen)
	}

	// Every (k-1)-subset of a frequent itemset must itself be frequent.
	for _, fi := range freq {
		for drop := range fi.Items {
			var sub Itemset
			for i, it := range fi.Items {
				if i != drop {
					sub = append(sub, it)
				}
			}
			if len(sub) == 0 {
				continue
			}
			assert.True(t, frequent[sub.Key()], "subset %s of %s not frequent", sub.Key(), fi.Items.Key())
		}
	}
}

func TestMineFrequentItemCapKeepsDelayItems(t *testing.T) {
	// 10 airlines with equal support plus a delay item; cap at 3 non-delay
	// items. The cut must be deterministic (support desc, token asc) and
	// must never evict delay-category items.
	var recs []domain.FeatureRecord
	airlines := []string{"A1", "B2", "C3", "D4", "E5", "F6", "G7", "H8", "I9", "J0"}
	for _, al := range airlines {
		for i := 0; i < 5; i++ {
			recs = append(recs, domain.FeatureRecord{AirlineCode: al, DelayCategory: domain.DelayShort})
		}
	}
	txns, err := Encode(recs, domain.FeatureColumns)
	require.NoError(t, err)

	freq := MineFrequent(txns, Config{MinSupport: 0.05, MaxLen: 1, MaxItems: 3})

	var singles []string
	delaySeen := false
	for _, fi := range freq {
		require.Len(t, fi.Items, 1)
		if fi.Items[0].IsDelay() {
			delaySeen = true
			continue
		}
		singles = append(singles, fi.Items[0].Token())
	}
	assert.True(t, delaySeen)
	// Equal supports: token order decides the survivors.
	assert.Equal(t, []string{"airline_code=A1", "airline_code=B2", "airline_code=C3"}, singles)
}

func TestGenerateRulesScenarioLift(t *testing.T) {
	txns := winterScenario(t)
	freq := MineFrequent(txns, Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000})

	rules := GenerateRules(freq, 1.5)
	var winterToLong *Rule
	for i, r := range rules {
		if r.Antecedent.Key() == "season=winter" && r.Consequent.Key() == "delay_category=long" {
			winterToLong = &rules[i]
		}
		// Metric identity must hold for every emitted rule.
		assert.GreaterOrEqual(t, r.Lift, 1.5)
	}

	require.NotNil(t, winterToLong, "winter->long rule should be emitted at lift threshold 1.5")
	assert.InDelta(t, 0.18, winterToLong.Support, 1e-9)
	assert.InDelta(t, 0.30, winterToLong.Confidence, 1e-9)
	assert.InDelta(t, 1.50, winterToLong.Lift, 1e-9)
}

func TestGenerateRulesExcludedAboveThreshold(t *testing.T) {
	txns := winterScenario(t)
	freq := MineFrequent(txns, Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000})

	for _, r := range GenerateRules(freq, 1.6) {
		assert.NotEqual(t, "season=winter", r.Antecedent.Key(),
			"winter->long sits at lift 1.5 and must be excluded at 1.6")
	}
}

func TestFilterDelayRulesKeepsOnlyDelayConsequents(t *testing.T) {
	txns := winterScenario(t)
	freq := MineFrequent(txns, Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000})
	delayRules := FilterDelayRules(GenerateRules(freq, 1.5))

	require.NotEmpty(t, delayRules)
	for _, dr := range delayRules {
		assert.Contains(t, dr.Consequent, "delay_category=")
		assert.NotEqual(t, "delay_category=no_delay", dr.Consequent)
	}
}

func TestFilterDelayRulesFormatting(t *testing.T) {
	rules := []Rule{
		{
			Antecedent: Itemset{
				{Column: domain.ColSeason, Value: "Winter"},
				{Column: domain.ColAirlineCode, Value: "SU"},
				{Column: domain.ColDayOfWeek, Value: "Monday"},
			},
			Consequent: Itemset{{Column: domain.ColDelayCategory, Value: "long"}},
			Support:    0.1, Confidence: 0.5, Lift: 2.0,
		},
		{
			// Unknown antecedent column passes through raw.
			Antecedent: Itemset{{Column: "aircraft_type", Value: "A320"}},
			Consequent: Itemset{{Column: domain.ColDelayCategory, Value: "very_long"}},
			Support:    0.1, Confidence: 0.4, Lift: 1.8,
		},
		{
			// no_delay consequent must be dropped.
			Antecedent: Itemset{{Column: domain.ColSeason, Value: "summer"}},
			Consequent: Itemset{{Column: domain.ColDelayCategory, Value: "no_delay"}},
			Support:    0.5, Confidence: 0.9, Lift: 3.0,
		},
		{
			// Two-item consequent must be dropped.
			Antecedent: Itemset{{Column: domain.ColSeason, Value: "winter"}},
			Consequent: Itemset{
				{Column: domain.ColDelayCategory, Value: "long"},
				{Column: domain.ColAirlineCode, Value: "SU"},
			},
			Support: 0.1, Confidence: 0.3, Lift: 2.5,
		},
	}

	out := FilterDelayRules(rules)
	require.Len(t, out, 2)

	// Sorted by lift desc.
	assert.Equal(t,
		"if airline SU, on monday and in winter, then a long delay",
		out[0].Text)
	assert.Equal(t, "if A320, then a very long delay", out[1].Text)
}

func TestPipelineIdempotent(t *testing.T) {
	txns := winterScenario(t)
	cfg := Config{MinSupport: 0.05, MaxLen: 4, MaxItems: 1000}

	first := FilterDelayRules(GenerateRules(MineFrequent(txns, cfg), 1.5))
	second := FilterDelayRules(GenerateRules(MineFrequent(txns, cfg), 1.5))
	assert.Equal(t, first, second)
}
