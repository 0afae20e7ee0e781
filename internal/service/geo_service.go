package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GeoLocator resolves the country an IP address belongs to.
type GeoLocator interface {
	Country(ctx context.Context, ip string) (string, error)
}

// GeoIPService resolves caller countries through an ip-api compatible
// JSON lookup endpoint.
type GeoIPService struct {
	lookupURL string
	client    *http.Client
}

// NewGeoIPService creates a new geolocation lookup service
func NewGeoIPService(lookupURL string, timeout time.Duration) *GeoIPService {
	return &GeoIPService{
		lookupURL: lookupURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// geoResponse represents the lookup response
type geoResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
	Message     string `json:"message,omitempty"`
}

// Country returns the ISO 3166-1 alpha-2 country code for the given IP.
func (s *GeoIPService) Country(ctx context.Context, ip string) (string, error) {
	if ip == "" {
		return "", fmt.Errorf("ip address is required")
	}

	url := fmt.Sprintf("%s/%s?fields=status,countryCode,message", s.lookupURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create geolocation request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to look up ip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation lookup returned status %d", resp.StatusCode)
	}

	var result geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse geolocation response: %w", err)
	}

	if result.Status != "success" {
		return "", fmt.Errorf("geolocation lookup failed: %s", result.Message)
	}

	return result.CountryCode, nil
}
