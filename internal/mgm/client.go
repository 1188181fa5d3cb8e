// Package mgm fetches sea-surface observations from the Turkish State
// Meteorological Service (MGM) public API.
package mgm

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultURL     = "https://servis.mgm.gov.tr/web/sondurumlar/denizler"
	origin         = "https://mgm.gov.tr"
	requestTimeout = 10 * time.Second
)

// Station is one sea observation point as returned by the service. Fields not
// needed for reports are ignored.
type Station struct {
	ID       int      `json:"istNo"`
	Region   string   `json:"il"`
	District string   `json:"ilce"`
	SeaTemp  *float64 `json:"denizSicaklik"` // nil when the station has no reading
}

// Client fetches current station readings.
type Client struct {
	http *http.Client
	url  string
}

// NewClient returns a client for the production endpoint with a bounded
// request timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				// The MGM endpoint serves an incomplete certificate chain.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		url: defaultURL,
	}
}

// Fetch returns the current readings for all stations. The service requires
// an Origin header; requests without it are rejected.
func (c *Client) Fetch(ctx context.Context) ([]Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sea temperatures: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sea temperatures: unexpected status %s", resp.Status)
	}

	var stations []Station
	if err := json.NewDecoder(resp.Body).Decode(&stations); err != nil {
		return nil, fmt.Errorf("decode sea temperatures: %w", err)
	}
	return stations, nil
}
