package domain

// DelayCategory is the closed severity classification of an arrival delay.
type DelayCategory string

const (
	DelayNone     DelayCategory = "no_delay"
	DelayShort    DelayCategory = "short"
	DelayMedium   DelayCategory = "medium"
	DelayLong     DelayCategory = "long"
	DelayVeryLong DelayCategory = "very_long"
)

// Valid reports whether c is one of the known delay categories.
func (c DelayCategory) Valid() bool {
	switch c {
	case DelayNone, DelayShort, DelayMedium, DelayLong, DelayVeryLong:
		return true
	}
	return false
}

// Feature column names as they appear in the flight_features relation.
// The mining pipeline treats these as the fixed encoding schema.
const (
	ColDayOfWeek        = "day_of_week"
	ColTimeOfDay        = "time_of_day"
	ColSeason           = "season"
	ColDepartureAirport = "departure_airport"
	ColArrivalAirport   = "arrival_airport"
	ColAirlineCode      = "airline_code"
	ColDelayCategory    = "delay_category"
)

// FeatureColumns is the full encoding schema, in stable order.
var FeatureColumns = []string{
	ColDayOfWeek,
	ColTimeOfDay,
	ColSeason,
	ColDepartureAirport,
	ColArrivalAirport,
	ColAirlineCode,
	ColDelayCategory,
}

// FeatureRecord is one row of flight_features: the categorical attributes of
// a single flight, used as input to the delay-rule mining job. Empty string
// means the attribute is absent for that flight.
type FeatureRecord struct {
	FlightID         int64         `json:"flight_id" db:"flight_id"`
	DayOfWeek        string        `json:"day_of_week" db:"day_of_week"`
	TimeOfDay        string        `json:"time_of_day" db:"time_of_day"`
	Season           string        `json:"season" db:"season"`
	DepartureAirport string        `json:"departure_airport" db:"departure_airport"`
	ArrivalAirport   string        `json:"arrival_airport" db:"arrival_airport"`
	AirlineCode      string        `json:"airline_code" db:"airline_code"`
	DelayCategory    DelayCategory `json:"delay_category" db:"delay_category"`
}

// Columns returns the record's attributes keyed by feature column name.
func (r FeatureRecord) Columns() map[string]string {
	return map[string]string{
		ColDayOfWeek:        r.DayOfWeek,
		ColTimeOfDay:        r.TimeOfDay,
		ColSeason:           r.Season,
		ColDepartureAirport: r.DepartureAirport,
		ColArrivalAirport:   r.ArrivalAirport,
		ColAirlineCode:      r.AirlineCode,
		ColDelayCategory:    string(r.DelayCategory),
	}
}
