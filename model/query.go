package model

// DepartureQuery selects which departure from a stop to report.
// Route and Destination are filters; the empty string means
// "unconstrained". A Destination consisting only of digits is matched
// exactly against the terminating stop id, anything else is matched as a
// case-sensitive substring of the destination name.
// ExcludedModes holds transport mode class codes ("1" train, "2" metro,
// "4" light rail, "5" bus, "7" coach, "9" ferry, "11" school bus);
// unrecognized codes are passed through to the API without effect.
type DepartureQuery struct {
	StopID        string `validate:"required"`
	Route         string
	Destination   string
	ExcludedModes []string
}
