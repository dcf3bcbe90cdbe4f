package checkout

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

var geoClient = &http.Client{Timeout: 3 * time.Second}

// DetectCountry resolves an IP address to an ISO-2 country code via a
// best-effort geolocation lookup. Any failure (private address, network
// error, empty result) falls back to DefaultCountry; the lookup is
// never fatal.
func DetectCountry(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return DefaultCountry
	}

	resp, err := geoClient.Get(fmt.Sprintf("http://ip-api.com/json/%s?fields=status,countryCode", ip))
	if err != nil {
		return DefaultCountry
	}
	defer resp.Body.Close()

	var result struct {
		Status      string `json:"status"`
		CountryCode string `json:"countryCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return DefaultCountry
	}

	if result.Status != "success" || len(result.CountryCode) != 2 {
		return DefaultCountry
	}
	return result.CountryCode
}
