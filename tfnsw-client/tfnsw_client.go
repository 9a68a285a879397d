package tfnsw_client

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aarongorka/TransportNSW/dlog"
	"github.com/aarongorka/TransportNSW/model"
	"github.com/pkg/errors"
)

// DefaultAPIURL is the production Transport NSW departure monitor endpoint
const DefaultAPIURL = "https://api.transport.nsw.gov.au/v1/tp/departure_mon"

// TfNSWClient configuration options for connecting to and requesting
// departure information from the Transport NSW open-data API
type TfNSWClient struct {
	Client *http.Client
	Logger *dlog.Logger
	APIURL string
	APIKey string
}

type TfNSWClientInterface interface {
	Request(stopID string, excludedModes []string) (*model.DepartureMonitorResponse, int, error)
}

// Request performs a single departure monitor request for a stop and
// returns the typed response data
func (c *TfNSWClient) Request(stopID string, excludedModes []string) (*model.DepartureMonitorResponse, int, error) {
	c.Logger.Debug("departure monitor request")

	request, err := c.createDepartureMonitorHTTPRequest(stopID, excludedModes)
	if err != nil {
		return nil, http.StatusBadRequest, errors.Wrap(err, "cannot create departure monitor HTTP request")
	}

	response, err := c.makeDepartureMonitorHTTPRequest(*c.Client, *request)
	if err != nil {
		var statusCode int
		if response != nil {
			if response.StatusCode >= http.StatusInternalServerError {
				statusCode = http.StatusBadGateway
			} else {
				statusCode = response.StatusCode
			}
			if ferr := response.Body.Close(); ferr != nil {
				c.Logger.Print("failed to close departure monitor response body")
			}
		} else {
			statusCode = http.StatusGatewayTimeout
		}
		return nil, statusCode, errors.Wrap(err, "cannot make departure monitor HTTP request")
	}

	body, err := c.readDepartureMonitorHTTPResponse(response)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.Wrap(err, "cannot read departure monitor response")
	}

	monitorResponse, err := c.createDepartureMonitorResponseData(body)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.Wrap(err, "cannot unmarshal departure monitor response")
	}

	return monitorResponse, http.StatusOK, nil
}

func (c *TfNSWClient) createDepartureMonitorHTTPRequest(stopID string, excludedModes []string) (*http.Request, error) {
	c.Logger.Debug("createDepartureMonitorHTTPRequest")

	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Add("outputFormat", "rapidJSON")
	q.Add("coordOutputFormat", "EPSG:4326")
	q.Add("mode", "direct")
	q.Add("type_dm", "stop")
	q.Add("name_dm", stopID)
	q.Add("nameKey_dm", "$USEPOINT$")
	q.Add("departureMonitorMacro", "true")
	q.Add("TfNSWDM", "true")
	q.Add("version", "10.2.1.42")

	if len(excludedModes) > 0 {
		q.Add("excludedMeans", "checkbox")
		for _, mode := range excludedModes {
			q.Add("exclMOT_"+mode, "1")
		}
	}

	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "apikey "+c.APIKey)
	return req, nil
}

func (c *TfNSWClient) makeDepartureMonitorHTTPRequest(client http.Client, request http.Request) (*http.Response, error) {
	c.Logger.Debug("makeDepartureMonitorHTTPRequest")
	resp, err := client.Do(&request)
	if err != nil {
		return nil, err
	}

	switch true {
	case resp.StatusCode >= http.StatusInternalServerError:
		return resp, errors.New("the departure monitor API is unavailable")
	case resp.StatusCode >= http.StatusBadRequest:
		return resp, errors.New("bad request to the departure monitor API; check the API key")
	default:
		return resp, nil
	}
}

func (c *TfNSWClient) readDepartureMonitorHTTPResponse(response *http.Response) (body []byte, err error) {
	c.Logger.Debug("readDepartureMonitorHTTPResponse")
	defer func() {
		c.Logger.Debug("close response")
		if ferr := response.Body.Close(); ferr != nil {
			err = ferr
			return
		}
		c.Logger.Debug("closed response successfully")
	}()

	body, err = io.ReadAll(response.Body)
	return body, err
}

func (c *TfNSWClient) createDepartureMonitorResponseData(body []byte) (*model.DepartureMonitorResponse, error) {
	c.Logger.Debug("createDepartureMonitorResponseData")
	monitorResponse := model.DepartureMonitorResponse{}
	err := json.Unmarshal(body, &monitorResponse)
	if err != nil {
		return nil, err
	}
	return &monitorResponse, nil
}
