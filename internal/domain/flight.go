package domain

import (
	"fmt"
	"time"
)

// Flight represents one scheduled flight with planned and (once reported)
// actual departure/arrival times. Actual times stay nil until the operating
// airline uploads them.
type Flight struct {
	ID               int64      `json:"id" db:"id"`
	AirlineCode      string     `json:"iata_code" db:"iata_code"`
	Number           string     `json:"flight" db:"flight"`
	DepartureAirport string     `json:"departure_airport" db:"departure_airport"`
	ArrivalAirport   string     `json:"arrival_airport" db:"arrival_airport"`
	PlanDeparture    time.Time  `json:"plan_departure" db:"plan_departure"`
	PlanArrival      time.Time  `json:"plan_arrival" db:"plan_arrival"`
	FactDeparture    *time.Time `json:"fact_departure" db:"fact_departure"`
	FactArrival      *time.Time `json:"fact_arrival" db:"fact_arrival"`
}

// ArrivalDelay returns the arrival delay, or false if the flight has not
// reported an actual arrival yet. Early arrivals yield a negative duration.
func (f Flight) ArrivalDelay() (time.Duration, bool) {
	if f.FactArrival == nil {
		return 0, false
	}
	return f.FactArrival.Sub(f.PlanArrival), true
}

// FlightUpload is one entry of an airline's punctuality upload. The airline
// code is taken from the authenticated token, never from the payload.
type FlightUpload struct {
	Number           string     `json:"flight"`
	DepartureAirport string     `json:"departure_airport"`
	ArrivalAirport   string     `json:"arrival_airport"`
	PlanDeparture    time.Time  `json:"plan_departure"`
	PlanArrival      time.Time  `json:"plan_arrival"`
	FactDeparture    *time.Time `json:"fact_departure,omitempty"`
	FactArrival      *time.Time `json:"fact_arrival,omitempty"`
}

// Validate checks structural constraints on an uploaded flight.
func (u FlightUpload) Validate() error {
	if u.Number == "" || len(u.Number) > 10 {
		return fmt.Errorf("flight number must be 1-10 characters")
	}
	if len(u.DepartureAirport) != 3 {
		return fmt.Errorf("departure_airport must be a 3-letter IATA code")
	}
	if len(u.ArrivalAirport) != 3 {
		return fmt.Errorf("arrival_airport must be a 3-letter IATA code")
	}
	if u.PlanArrival.Before(u.PlanDeparture) {
		return fmt.Errorf("plan_arrival must be after plan_departure")
	}
	if u.FactDeparture != nil && u.FactArrival != nil && u.FactArrival.Before(*u.FactDeparture) {
		return fmt.Errorf("fact_arrival must be after fact_departure")
	}
	return nil
}

// Airport is the static reference record for one airport.
type Airport struct {
	IATACode  string  `json:"iata_code" db:"iata_code"`
	Name      string  `json:"airport_name" db:"airport_name"`
	City      string  `json:"city" db:"city"`
	Country   string  `json:"country" db:"country"`
	Timezone  string  `json:"timezone" db:"timezone"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Latitude  float64 `json:"latitude" db:"latitude"`
}

// AirportStats aggregates traffic and data-quality counters for one airport.
type AirportStats struct {
	IATACode         string `json:"iata_code"`
	Departures       int    `json:"departures"`
	Arrivals         int    `json:"arrivals"`
	MissingDeparture int    `json:"missing_departures"`
	MissingArrival   int    `json:"missing_arrivals"`
	FeaturesRecorded int    `json:"features_recorded"`
}

// AirlineRating is the latest punctuality rating snapshot for one airline.
type AirlineRating struct {
	IATACode        string    `json:"iata_code" db:"iata_code"`
	Name            string    `json:"airline_name" db:"airline_name"`
	RatingDeparture float64   `json:"rating_departure" db:"rating_departure"`
	RatingArrival   float64   `json:"rating_arrival" db:"rating_arrival"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// FlightSummary is a search result row: the flight plus its feature
// attributes when a feature row exists (nil otherwise, LEFT JOIN).
type FlightSummary struct {
	Flight
	DayOfWeek     *string `json:"day_of_week"`
	TimeOfDay     *string `json:"time_of_day"`
	Season        *string `json:"season"`
	DelayCategory *string `json:"delay_category"`
}

// FlightDetail is the full flight view: airports resolved to names and
// cities, plus the feature attributes when present.
type FlightDetail struct {
	FlightSummary
	DepartureAirportName string `json:"departure_airport_name"`
	DepartureCity        string `json:"departure_city"`
	ArrivalAirportName   string `json:"arrival_airport_name"`
	ArrivalCity          string `json:"arrival_city"`
}

// DelayBucket is one row of an airline's delay histogram.
type DelayBucket struct {
	Category        DelayCategory `json:"delay_category"`
	Count           int           `json:"count"`
	AvgDelaySeconds float64       `json:"avg_delay_seconds"`
}
