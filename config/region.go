package config

// RegionHosts maps region codes to the finance site serving that region.
var RegionHosts = map[string]string{
	"us": "https://finance.yahoo.com",    // United States
	"uk": "https://uk.finance.yahoo.com", // United Kingdom
	"ca": "https://ca.finance.yahoo.com", // Canada
	"au": "https://au.finance.yahoo.com", // Australia
	"in": "https://in.finance.yahoo.com", // India
	"sg": "https://sg.finance.yahoo.com", // Singapore
}

// DefaultRegion is used when no region or base URL is configured.
const DefaultRegion = "us"
