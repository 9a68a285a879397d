package model

import (
	"strconv"
	"time"
)

// The departure monitor API emits UTC timestamps with a literal Z suffix
const departureTimeLayout = "2006-01-02T15:04:05Z"

// DepartureMonitorResponse is a view of the rapidJSON departure monitor
// response, limited to the fields this module consumes. Optional fields
// that are absent unmarshal to their zero value rather than erroring.
type DepartureMonitorResponse struct {
	StopEvents []StopEvent `json:"stopEvents"`
}

// StopEvent is one scheduled vehicle departure from the monitored stop
type StopEvent struct {
	IsRealtimeControlled   bool           `json:"isRealtimeControlled,omitempty"`
	DepartureTimePlanned   string         `json:"departureTimePlanned"`
	DepartureTimeEstimated string         `json:"departureTimeEstimated,omitempty"`
	Transportation         Transportation `json:"transportation"`
}

// Transportation describes the service operating a stop event
type Transportation struct {
	Number      string      `json:"number"`
	Destination Destination `json:"destination"`
	Product     Product     `json:"product"`
}

// Destination is the end of the line for a service; ID is the stop id of
// the terminating stop, Name the human-readable headsign
type Destination struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Product carries the transport mode class of a service
type Product struct {
	Class int    `json:"class"`
	Name  string `json:"name,omitempty"`
}

// DepartureTime returns the estimated departure time when the event is
// real-time controlled, and the planned departure time otherwise
func (s StopEvent) DepartureTime() (departureTime time.Time, isRealTime bool, err error) {
	if s.IsRealtimeControlled && s.DepartureTimeEstimated != "" {
		departureTime, err = time.Parse(departureTimeLayout, s.DepartureTimeEstimated)
		return departureTime, true, err
	}

	departureTime, err = time.Parse(departureTimeLayout, s.DepartureTimePlanned)
	return departureTime, false, err
}

// PlannedDepartureTime returns the scheduled departure time regardless of
// any real-time data
func (s StopEvent) PlannedDepartureTime() (time.Time, error) {
	return time.Parse(departureTimeLayout, s.DepartureTimePlanned)
}

// IsExpired reports whether the event has already departed. Events with
// an unparsable departure time are treated as expired so that a single
// malformed entry cannot become the selected departure.
func (s StopEvent) IsExpired(now time.Time) bool {
	depTime, _, err := s.DepartureTime()
	if err != nil {
		return true
	}

	return !depTime.After(now)
}

// ModeCode returns the transport mode class as the decimal string used
// by the exclMOT_ request parameters
func (s StopEvent) ModeCode() string {
	return strconv.Itoa(s.Transportation.Product.Class)
}
