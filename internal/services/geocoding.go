package services

import (
	"context"
	"fmt"
	"os"

	"googlemaps.github.io/maps"
)

// GeocodeResult is a simplified forward/reverse geocoding answer.
type GeocodeResult struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Suggestion is one autocomplete candidate for a partial address.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// Geocoder wraps the Google Maps client. All lookups are best effort: the
// ride flow works with raw coordinates when the provider is down.
type Geocoder struct {
	client *maps.Client
}

var geocoder *Geocoder

// InitGeocoder creates the shared Geocoder from GOOGLE_MAPS_API_KEY. Returns
// an error when the key is missing so main can decide whether to continue
// without geocoding.
func InitGeocoder() error {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY not set")
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("failed to create maps client: %v", err)
	}

	geocoder = &Geocoder{client: client}
	return nil
}

// GetGeocoder returns the shared Geocoder, or nil when geocoding is not
// configured.
func GetGeocoder() *Geocoder {
	return geocoder
}

// Forward resolves a free-text address to coordinates.
func (g *Geocoder) Forward(ctx context.Context, address string) (*GeocodeResult, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode error: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("address not found")
	}

	first := results[0]
	return &GeocodeResult{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// Reverse resolves coordinates to the nearest formatted address.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (*GeocodeResult, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return nil, fmt.Errorf("reverse geocode error: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no address at location")
	}

	first := results[0]
	return &GeocodeResult{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// Suggest returns autocomplete candidates for a partial address. Failures
// degrade to an empty list at the handler layer.
func (g *Geocoder) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	resp, err := g.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("autocomplete error: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return suggestions, nil
}
