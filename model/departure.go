package model

// NotAvailable is the sentinel value for every DepartureRecord field
// when no concrete departure can be reported
const NotAvailable = "n/a"

// DepartureRecord describes the next matching departure from a stop.
// Either all fields describe one concrete upcoming departure, or all are
// simultaneously the "n/a" sentinel; partial records are never produced.
// Due and Delay are whole minutes rendered as decimal strings so that the
// sentinel fits the single fixed shape.
type DepartureRecord struct {
	StopID      string `json:"stop_id"`
	Route       string `json:"route"`
	Due         string `json:"due"`
	Delay       string `json:"delay"`
	RealTime    string `json:"real_time"`
	Destination string `json:"destination"`
}

// NoDeparture returns the all-"n/a" sentinel record
func NoDeparture() DepartureRecord {
	return DepartureRecord{
		StopID:      NotAvailable,
		Route:       NotAvailable,
		Due:         NotAvailable,
		Delay:       NotAvailable,
		RealTime:    NotAvailable,
		Destination: NotAvailable,
	}
}

var modeNames = map[int]string{
	1:  "Train",
	2:  "Metro",
	4:  "Lightrail",
	5:  "Bus",
	7:  "Coach",
	9:  "Ferry",
	11: "Schoolbus",
}

// ModeName maps a transport mode class to its human-readable name; the
// empty string is returned for classes this module does not recognize
// (the external API is the authority on mode codes)
func ModeName(class int) string {
	return modeNames[class]
}
