package timeout

import (
	"net/url"
	"strings"
	"testing"
)

func TestUberDeepLink(t *testing.T) {
	link := UberDeepLink("123 Main St", "456 Oak Ave", 40.7128, -74.0060, 40.7589, -73.9851)

	if !strings.HasPrefix(link, "https://m.uber.com/ul/?") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := u.Query()

	checks := map[string]string{
		"action":             "setPickup",
		"pickup[latitude]":   "40.7128",
		"pickup[longitude]":  "-74.006",
		"pickup[nickname]":   "123 Main St",
		"dropoff[latitude]":  "40.7589",
		"dropoff[longitude]": "-73.9851",
		"dropoff[nickname]":  "456 Oak Ave",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestUberDeepLink_DefaultNicknames(t *testing.T) {
	link := UberDeepLink("", "", 1, 2, 3, 4)

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := u.Query()

	if got := q.Get("pickup[nickname]"); got != "Pickup Location" {
		t.Errorf("pickup nickname = %q, want %q", got, "Pickup Location")
	}
	if got := q.Get("dropoff[nickname]"); got != "Destination" {
		t.Errorf("dropoff nickname = %q, want %q", got, "Destination")
	}
}

func TestUberDeepLink_EscapesAddresses(t *testing.T) {
	link := UberDeepLink("Café & Bar, 5th Ave", "Home", 0, 0, 0, 0)

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := u.Query().Get("pickup[nickname]"); got != "Café & Bar, 5th Ave" {
		t.Errorf("pickup nickname round-trip = %q", got)
	}
}
