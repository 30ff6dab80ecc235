package locations

import (
	"sort"
	"strings"
)

// KnownCity is a catalog entry: a city name, its IANA zone and approximate coordinates.
type KnownCity struct {
	Name      string  `json:"name"`
	Zone      string  `json:"zone"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// knownCities is keyed by lowercased name.
var knownCities = map[string]KnownCity{
	"new york":    {"New York", "America/New_York", 40.7128, -74.0060},
	"london":      {"London", "Europe/London", 51.5074, -0.1278},
	"paris":       {"Paris", "Europe/Paris", 48.8566, 2.3522},
	"tokyo":       {"Tokyo", "Asia/Tokyo", 35.6762, 139.6503},
	"hong kong":   {"Hong Kong", "Asia/Hong_Kong", 22.3193, 114.1694},
	"dubai":       {"Dubai", "Asia/Dubai", 25.2048, 55.2708},
	"sydney":      {"Sydney", "Australia/Sydney", -33.8688, 151.2093},
	"los angeles": {"Los Angeles", "America/Los_Angeles", 34.0522, -118.2437},
	"singapore":   {"Singapore", "Asia/Singapore", 1.3521, 103.8198},
	"mumbai":      {"Mumbai", "Asia/Kolkata", 19.0760, 72.8777},
	"são paulo":   {"São Paulo", "America/Sao_Paulo", -23.5505, -46.6333},
	"berlin":      {"Berlin", "Europe/Berlin", 52.5200, 13.4050},
	"toronto":     {"Toronto", "America/Toronto", 43.6532, -79.3832},
	"shanghai":    {"Shanghai", "Asia/Shanghai", 31.2304, 121.4737},
	"moscow":      {"Moscow", "Europe/Moscow", 55.7558, 37.6173},
	"seoul":       {"Seoul", "Asia/Seoul", 37.5665, 126.9780},
	"chicago":     {"Chicago", "America/Chicago", 41.8781, -87.6298},
	"mexico city": {"Mexico City", "America/Mexico_City", 19.4326, -99.1332},
	"istanbul":    {"Istanbul", "Europe/Istanbul", 41.0082, 28.9784},
	"bangkok":     {"Bangkok", "Asia/Bangkok", 13.7563, 100.5018},
}

// aliases map common alternate spellings onto catalog keys.
var aliases = map[string]string{
	"nyc":       "new york",
	"la":        "los angeles",
	"sao paulo": "são paulo",
	"bombay":    "mumbai",
	"hk":        "hong kong",
}

// Lookup finds a catalog city by name, ignoring case and surrounding whitespace.
func Lookup(name string) (KnownCity, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	city, ok := knownCities[key]
	return city, ok
}

// Catalog returns every known city sorted by name.
func Catalog() []KnownCity {
	cities := make([]KnownCity, 0, len(knownCities))
	for _, c := range knownCities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool {
		return cities[i].Name < cities[j].Name
	})
	return cities
}
