package test_helpers

import (
	"reflect"
	"testing"
	"time"

	"github.com/aarongorka/TransportNSW/model"
)

func AssertString(t *testing.T, got string, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got '%s' want '%s'\n", got, want)
	}
}

func AssertInt(t *testing.T, got int, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got '%d' want '%d'\n", got, want)
	}
}

func AssertDepartureRecord(t *testing.T, got model.DepartureRecord, want model.DepartureRecord) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected departure record: got %#v, wanted %#v\n", got, want)
	}
}

func AdjustTime(t *testing.T, now time.Time, d string) time.Time {
	t.Helper()
	duration, err := time.ParseDuration(d)
	if err != nil {
		t.Fatalf("%s\n", err.Error())
	}
	return now.Add(duration)
}
