package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/smokyabdulrahman/vakit/internal/prayer"
)

const defaultBaseURL = "https://ezanvakti.herokuapp.com"

// ErrStatus matches any non-200 response; see StatusError for details.
var ErrStatus = errors.New("unexpected API status")

// StatusError carries a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Client communicates with the ezanvakti prayer times API, a mirror of the
// Diyanet monthly schedules.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
	// MaxRetries bounds retries of transport errors and 5xx responses.
	MaxRetries uint64
	// RetryBase is the first backoff delay; later delays double.
	RetryBase time.Duration
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL:    defaultBaseURL,
		MaxRetries: 3,
		RetryBase:  500 * time.Millisecond,
	}
}

// FetchMonthlySchedule fetches about a month of daily records for a district,
// starting today.
func (c *Client) FetchMonthlySchedule(ctx context.Context, districtID string) ([]prayer.Record, error) {
	if districtID == "" {
		return nil, errors.New("district id is required")
	}

	var days []DailyTimes
	if err := c.get(ctx, "vakitler", districtID, &days); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("API returned no prayer times for district %s", districtID)
	}

	records := make([]prayer.Record, 0, len(days))
	for _, d := range days {
		r, err := d.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// FetchCountries returns country names mapped to their ids.
func (c *Client) FetchCountries(ctx context.Context) (map[string]string, error) {
	countries, err := c.FetchCountryList(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(countries))
	for _, v := range countries {
		out[v.UlkeAdi] = v.UlkeID
	}
	return out, nil
}

// FetchCities returns the city names of a country mapped to their ids.
func (c *Client) FetchCities(ctx context.Context, countryID string) (map[string]string, error) {
	cities, err := c.FetchCityList(ctx, countryID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(cities))
	for _, v := range cities {
		out[v.SehirAdi] = v.SehirID
	}
	return out, nil
}

// FetchDistricts returns the district names of a city mapped to their ids.
func (c *Client) FetchDistricts(ctx context.Context, cityID string) (map[string]string, error) {
	districts, err := c.FetchDistrictList(ctx, cityID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(districts))
	for _, v := range districts {
		out[v.IlceAdi] = v.IlceID
	}
	return out, nil
}

// FetchCountryList returns the raw country entries, English names included.
func (c *Client) FetchCountryList(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.get(ctx, "ulkeler", "", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// FetchCityList returns the raw city entries of a country.
func (c *Client) FetchCityList(ctx context.Context, countryID string) ([]City, error) {
	if countryID == "" {
		return nil, errors.New("country id is required")
	}
	var cities []City
	if err := c.get(ctx, "sehirler", countryID, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// FetchDistrictList returns the raw district entries of a city.
func (c *Client) FetchDistrictList(ctx context.Context, cityID string) ([]District, error) {
	if cityID == "" {
		return nil, errors.New("city id is required")
	}
	var districts []District
	if err := c.get(ctx, "ilceler", cityID, &districts); err != nil {
		return nil, err
	}
	return districts, nil
}

// get fetches BaseURL/endpoint[/id] and decodes the JSON body into out.
// Transport errors and 5xx responses are retried with exponential backoff.
func (c *Client) get(ctx context.Context, endpoint, id string, out any) error {
	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.BaseURL, "/"), endpoint)
	if id != "" {
		reqURL += "/" + url.PathEscape(id)
	}

	base := c.RetryBase
	if base <= 0 {
		base = time.Millisecond
	}
	backoff := retry.WithMaxRetries(c.MaxRetries, retry.NewExponential(base))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("API request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if resp.StatusCode >= http.StatusInternalServerError {
				return retry.RetryableError(serr)
			}
			return serr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode API response: %w", err)
		}
		return nil
	})
}
