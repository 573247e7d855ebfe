package timeout

import (
	"net/url"
	"strconv"
)

const uberDeepLinkBase = "https://m.uber.com/ul/"

// UberDeepLink builds the ride-hailing fallback URL for a ride that nobody
// in the group picked up. The link is only constructed and handed to the
// host environment to open; no API call is made.
func UberDeepLink(pickupAddress, destinationAddress string, pickupLat, pickupLng, destLat, destLng float64) string {
	if pickupAddress == "" {
		pickupAddress = "Pickup Location"
	}
	if destinationAddress == "" {
		destinationAddress = "Destination"
	}

	params := url.Values{}
	params.Set("action", "setPickup")
	params.Set("pickup[latitude]", formatCoord(pickupLat))
	params.Set("pickup[longitude]", formatCoord(pickupLng))
	params.Set("pickup[nickname]", pickupAddress)
	params.Set("dropoff[latitude]", formatCoord(destLat))
	params.Set("dropoff[longitude]", formatCoord(destLng))
	params.Set("dropoff[nickname]", destinationAddress)

	return uberDeepLinkBase + "?" + params.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
