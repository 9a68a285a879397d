// Package departures answers "when is the next matching departure from
// this stop" against the Transport NSW open-data departure monitor API.
//
// GetDepartures always returns a well-formed DepartureRecord: transport
// failures, malformed responses and queries with no matching stop event
// all collapse to the all-"n/a" sentinel, so callers need no
// error-handling branches for routine "nothing is due" conditions. The
// returned error is non-nil only for invalid queries (e.g. an empty stop
// id), which are treated as programmer errors rather than absorbed.
package departures

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aarongorka/TransportNSW/config"
	"github.com/aarongorka/TransportNSW/dlog"
	"github.com/aarongorka/TransportNSW/model"
	tfnsw_client "github.com/aarongorka/TransportNSW/tfnsw-client"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DepartureMonitor reports the next departure from a stop matching a
// query. It holds no state between calls; each GetDepartures invocation
// is one independent request to the API.
type DepartureMonitor struct {
	Logger *dlog.Logger
	Client tfnsw_client.TfNSWClientInterface

	// ExcludedModes applies when a query carries no exclusions of its own
	ExcludedModes []string

	// Now is the clock used for due/expiry calculations; nil means time.Now
	Now func() time.Time
}

// NewDepartureMonitor builds a monitor from application configuration.
// Construction fails for an empty API key or a negative timeout; a zero
// timeout takes the default, so every monitor built here carries a bound
// on the outbound request.
func NewDepartureMonitor(cfg *config.AppConfig, logger *dlog.Logger) (*DepartureMonitor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("an API key is required")
	}

	timeoutSeconds := cfg.TimeoutSeconds
	if timeoutSeconds < 0 {
		return nil, errors.Errorf("timeout must not be negative: %d", timeoutSeconds)
	}
	if timeoutSeconds == 0 {
		timeoutSeconds = config.DefaultTimeoutSeconds
	}

	return &DepartureMonitor{
		Logger: logger,
		Client: &tfnsw_client.TfNSWClient{
			Client: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
			Logger: logger,
			APIURL: cfg.APIURL,
			APIKey: cfg.APIKey,
		},
		ExcludedModes: cfg.ExcludedModes,
	}, nil
}

var validate = validator.New()

// GetDepartures returns the next departure from the queried stop that
// survives the query's route, destination and mode filters. Runtime
// failures are mapped to the sentinel record here and nowhere else.
func (m *DepartureMonitor) GetDepartures(query model.DepartureQuery) (model.DepartureRecord, error) {
	m.Logger.Debug("GetDepartures")

	if err := validate.Struct(query); err != nil {
		return model.NoDeparture(), errors.Wrap(err, "invalid departure query")
	}

	record, err := m.lookupDeparture(query)
	if err != nil {
		m.Logger.Printf("no departure to report: %s", err.Error())
		return model.NoDeparture(), nil
	}

	return record, nil
}

func (m *DepartureMonitor) lookupDeparture(query model.DepartureQuery) (model.DepartureRecord, error) {
	m.Logger.Debug("lookupDeparture")

	excludedModes := query.ExcludedModes
	if len(excludedModes) == 0 {
		excludedModes = m.ExcludedModes
	}

	now := m.now()

	response, statusCode, err := m.Client.Request(query.StopID, excludedModes)
	if err != nil {
		return model.NoDeparture(), errors.Wrapf(err, "departure monitor request failed (HTTP %d)", statusCode)
	}

	event := m.findStopEvent(now, response, query, excludedModes)
	if event == nil {
		return model.NoDeparture(), errors.New("no stop events match the departure query")
	}

	return m.buildRecord(now, query.StopID, *event)
}

// We trust that the stop events are ordered by ascending departure time;
// the first event surviving the filters is the answer
func (m *DepartureMonitor) findStopEvent(now time.Time, response *model.DepartureMonitorResponse, query model.DepartureQuery, excludedModes []string) *model.StopEvent {
	m.Logger.Debug("findStopEvent")

	for i := range response.StopEvents {
		event := response.StopEvents[i]

		if isExcludedMode(event, excludedModes) {
			m.Logger.Debugf("skipping stop event with excluded mode %s", event.ModeCode())
			continue
		}

		if query.Route != "" && event.Transportation.Number != query.Route {
			continue
		}

		if query.Destination != "" && !matchesDestination(event, query.Destination) {
			continue
		}

		if event.IsExpired(now) {
			m.Logger.Debugf("skipping expired stop event for route %s", event.Transportation.Number)
			continue
		}

		return &response.StopEvents[i]
	}

	return nil
}

func (m *DepartureMonitor) buildRecord(now time.Time, stopID string, event model.StopEvent) (model.DepartureRecord, error) {
	m.Logger.Debug("buildRecord")

	depTime, isRealTime, err := event.DepartureTime()
	if err != nil {
		return model.NoDeparture(), errors.Wrap(err, "cannot parse departure time")
	}

	due := int(depTime.Sub(now).Round(time.Minute).Minutes())
	if due < 0 {
		due = 0
	}

	delay := 0
	realTime := "n"
	if isRealTime {
		realTime = "y"
		planned, err := event.PlannedDepartureTime()
		if err != nil {
			return model.NoDeparture(), errors.Wrap(err, "cannot parse planned departure time")
		}
		delay = int(depTime.Sub(planned).Round(time.Minute).Minutes())
	}

	m.Logger.Debugf("next departure is a %s service to %s in %d minute(s)",
		model.ModeName(event.Transportation.Product.Class), event.Transportation.Destination.Name, due)

	return model.DepartureRecord{
		StopID:      stopID,
		Route:       event.Transportation.Number,
		Due:         strconv.Itoa(due),
		Delay:       strconv.Itoa(delay),
		RealTime:    realTime,
		Destination: event.Transportation.Destination.Name,
	}, nil
}

func (m *DepartureMonitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func isExcludedMode(event model.StopEvent, excludedModes []string) bool {
	for _, mode := range excludedModes {
		if event.ModeCode() == mode {
			return true
		}
	}
	return false
}

// A destination consisting only of digits is a stop id and matches the
// terminating stop exactly; anything else matches the destination name
// as a case-sensitive substring
func matchesDestination(event model.StopEvent, destination string) bool {
	if isStopIDShaped(destination) {
		return event.Transportation.Destination.ID == destination
	}
	return strings.Contains(event.Transportation.Destination.Name, destination)
}

func isStopIDShaped(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
