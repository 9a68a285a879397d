package tfnsw_client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/aarongorka/TransportNSW/dlog"
	"github.com/aarongorka/TransportNSW/model"
	"github.com/aarongorka/TransportNSW/test_helpers"
	"github.com/fortytw2/leaktest"
)

const departureTimeLayout = "2006-01-02T15:04:05Z"

var (
	now = time.Now().UTC().Truncate(time.Second)

	NoStopEventsResponse  = `{"version": "10.2.1.42", "error": {"message": "stop invalid"}}`
	InvalidAPIKeyResponse = `{"ErrorDetails": {"Message": "An authentication error occurred"}}`
)

func successfulDepartureMonitorResponse(t *testing.T) string {
	t.Helper()

	return `{
    "version": "10.2.1.42",
    "stopEvents": [
        {
            "isRealtimeControlled": true,
            "location": {"id": "209516", "name": "Palm Beach Rd"},
            "departureTimePlanned": "` + test_helpers.AdjustTime(t, now, "5m").Format(departureTimeLayout) + `",
            "departureTimeEstimated": "` + test_helpers.AdjustTime(t, now, "7m").Format(departureTimeLayout) + `",
            "transportation": {
                "number": "199",
                "description": "Palm Beach to Manly",
                "destination": {"id": "2090129", "name": "Palm Beach"},
                "product": {"class": 5, "name": "Sydney Buses Network"}
            }
        }
    ]
}`
}

func TestTfNSWClient_Request(t *testing.T) {
	apiKey := "abc123"
	stopID := "209516"

	createTfNSWStub := func() *httptest.Server {
		t.Helper()

		handlerFunc := func(w http.ResponseWriter, r *http.Request) {
			t.Helper()
			var body string
			var statusCode int

			switch true {
			case r.Header.Get("Authorization") != "apikey "+apiKey:
				body = InvalidAPIKeyResponse
				statusCode = http.StatusUnauthorized
			case r.URL.Query().Get("outputFormat") != "rapidJSON":
				body = NoStopEventsResponse
				statusCode = http.StatusBadRequest
			case r.URL.Query().Get("name_dm") != stopID:
				body = NoStopEventsResponse
				statusCode = http.StatusOK
			default:
				body = successfulDepartureMonitorResponse(t)
				statusCode = http.StatusOK
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statusCode)
			if _, err := fmt.Fprint(w, body); err != nil {
				t.Fatalf("%s\n", err.Error())
			}
		}

		return httptest.NewServer(http.HandlerFunc(handlerFunc))
	}

	t.Run("happy path", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := createTfNSWStub()
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		monitorResponse, statusCode, err := c.Request(stopID, nil)
		if err != nil {
			t.Errorf("%s\n", err.Error())
		}

		if statusCode != http.StatusOK {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusOK, statusCode)
		}

		expectedResponse := new(model.DepartureMonitorResponse)
		if err := json.Unmarshal([]byte(successfulDepartureMonitorResponse(t)), expectedResponse); err != nil {
			t.Fatalf("%s\n", err.Error())
		}

		if reflect.DeepEqual(monitorResponse, expectedResponse) == false {
			t.Errorf("Got unexpected departure monitor response; got:\n%#v\nwant:\n%#v", monitorResponse, expectedResponse)
		}
	})

	t.Run("excluded modes are carried as request parameters", func(t *testing.T) {
		defer leaktest.Check(t)()

		queries := make(chan map[string][]string, 1)

		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Helper()
			queries <- r.URL.Query()
			w.Header().Set("Content-Type", "application/json")
			if _, err := fmt.Fprint(w, successfulDepartureMonitorResponse(t)); err != nil {
				t.Fatalf("%s\n", err.Error())
			}
		}))
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		if _, _, err := c.Request(stopID, []string{"5", "11"}); err != nil {
			t.Fatalf("%s\n", err.Error())
		}

		query := <-queries
		for _, param := range []string{"excludedMeans", "exclMOT_5", "exclMOT_11"} {
			if len(query[param]) == 0 {
				t.Errorf("expected request parameter %s to be set\n", param)
			}
		}
	})

	t.Run("no API key", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := createTfNSWStub()
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: "",
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusUnauthorized {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusUnauthorized, statusCode)
		}
	})

	t.Run("invalid API key", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := createTfNSWStub()
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: "invalid",
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusUnauthorized {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusUnauthorized, statusCode)
		}
	})

	t.Run("no response from the API", func(t *testing.T) {
		defer leaktest.Check(t)()

		c := TfNSWClient{
			Client: &http.Client{Timeout: 50 * time.Millisecond},
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: "http://127.0.0.1:1",
			APIKey: apiKey,
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusGatewayTimeout {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusGatewayTimeout, statusCode)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer stub.Close()

		client := stub.Client()
		client.Timeout = 20 * time.Millisecond

		c := TfNSWClient{
			Client: client,
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusGatewayTimeout {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusGatewayTimeout, statusCode)
		}
	})

	t.Run("error response from the API", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Helper()
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusBadGateway {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusBadGateway, statusCode)
		}
	})

	t.Run("malformed response body", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Helper()
			if _, err := fmt.Fprint(w, `<!DOCTYPE html><html>not JSON</html>`); err != nil {
				t.Fatalf("%s\n", err.Error())
			}
		}))
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		_, statusCode, err := c.Request(stopID, nil)
		if err == nil {
			t.Error("Expected an error; no error returned")
		}

		if statusCode != http.StatusInternalServerError {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusInternalServerError, statusCode)
		}
	})

	t.Run("response without stop events", func(t *testing.T) {
		defer leaktest.Check(t)()

		stub := createTfNSWStub()
		defer stub.Close()

		c := TfNSWClient{
			Client: stub.Client(),
			Logger: dlog.NewLogger(dlog.LoggerSetOutput(io.Discard)),
			APIURL: stub.URL,
			APIKey: apiKey,
		}

		monitorResponse, statusCode, err := c.Request("999", nil)
		if err != nil {
			t.Errorf("%s\n", err.Error())
		}

		if statusCode != http.StatusOK {
			t.Errorf("Want HTTP status code: %d; got: %d\n", http.StatusOK, statusCode)
		}

		if len(monitorResponse.StopEvents) != 0 {
			t.Errorf("Expected no stop events; got %d\n", len(monitorResponse.StopEvents))
		}
	})
}
