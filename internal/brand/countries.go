package brand

import (
	"fmt"
	"slices"
	"strings"
)

// Region groups storefront codes for display.
type Region struct {
	Key       string
	Name      string
	Countries []string
}

const China = "CN"

// Regions lists every supported storefront, in display order.
var Regions = []Region{
	{Key: "africa_middle_east_india", Name: "Africa Middle East India", Countries: []string{
		"DZ", "AM", "BH", "EG", "GH", "IN", "IQ", "IL", "JO", "KE", "KW", "LB", "MA", "OM", "PK", "QA", "SA", "ZA", "AE",
	}},
	{Key: "asia_pacific", Name: "Asia Pacific", Countries: []string{
		"AU", "KH", "CN", "HK", "ID", "JP", "MO", "MY", "MN", "NP", "NZ", "PH", "SG", "KR", "LK", "TW", "TH", "VN",
	}},
	{Key: "europe", Name: "Europe", Countries: []string{
		"AL", "AT", "AZ", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IS", "IE", "IT", "KZ",
		"KG", "LV", "LU", "NL", "NO", "PL", "PT", "RO", "RU", "SK", "SI", "ES", "SE", "CH", "TR", "GB", "UA", "UZ",
	}},
	{Key: "latin_america", Name: "Latin America", Countries: []string{
		"AR", "BO", "BR", "CL", "CO", "CR", "DO", "EC", "SV", "GT", "HN", "MX", "PA", "PY", "PE",
	}},
	{Key: "north_america", Name: "North America", Countries: []string{"CA", "US"}},
}

var countryNames = map[string]string{
	"DZ": "Algeria", "AM": "Armenia", "BH": "Bahrain", "EG": "Egypt", "GH": "Ghana", "IN": "India",
	"IQ": "Iraq", "IL": "Israel", "JO": "Jordan", "KE": "Kenya", "KW": "Kuwait", "LB": "Lebanon",
	"MA": "Morocco", "OM": "Oman", "PK": "Pakistan", "QA": "Qatar", "SA": "Saudi Arabia",
	"ZA": "South Africa", "AE": "UAE",
	"AU": "Australia", "KH": "Cambodia", "CN": "China", "HK": "Hong Kong", "ID": "Indonesia",
	"JP": "Japan", "MO": "Macau", "MY": "Malaysia", "MN": "Mongolia", "NP": "Nepal",
	"NZ": "New Zealand", "PH": "Philippines", "SG": "Singapore", "KR": "South Korea",
	"LK": "Sri Lanka", "TW": "Taiwan", "TH": "Thailand", "VN": "Vietnam",
	"AL": "Albania", "AT": "Austria", "AZ": "Azerbaijan", "BE": "Belgium", "BG": "Bulgaria",
	"HR": "Croatia", "CY": "Cyprus", "CZ": "Czech Republic", "DK": "Denmark", "EE": "Estonia",
	"FI": "Finland", "FR": "France", "DE": "Germany", "GR": "Greece", "HU": "Hungary",
	"IS": "Iceland", "IE": "Ireland", "IT": "Italy", "KZ": "Kazakhstan", "KG": "Kyrgyzstan",
	"LV": "Latvia", "LU": "Luxembourg", "NL": "Netherlands", "NO": "Norway", "PL": "Poland",
	"PT": "Portugal", "RO": "Romania", "RU": "Russia", "SK": "Slovakia", "SI": "Slovenia",
	"ES": "Spain", "SE": "Sweden", "CH": "Switzerland", "TR": "Türkiye", "GB": "UK",
	"UA": "Ukraine", "UZ": "Uzbekistan",
	"AR": "Argentina", "BO": "Bolivia", "BR": "Brazil", "CL": "Chile", "CO": "Colombia",
	"CR": "Costa Rica", "DO": "Dominican Republic", "EC": "Ecuador", "SV": "El Salvador",
	"GT": "Guatemala", "HN": "Honduras", "MX": "Mexico", "PA": "Panamá", "PY": "Paraguay",
	"PE": "Peru",
	"CA": "Canada", "US": "United States",
}

// CountryName is the display name of a code, or the code itself.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// AllCountries lists every supported code in region order. China is left
// out unless includeChina is set.
func AllCountries(includeChina bool) []string {
	var out []string
	for _, r := range Regions {
		for _, c := range r.Countries {
			if c == China && !includeChina {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

func IsSupported(code string) bool {
	_, ok := countryNames[code]
	return ok
}

// Preset is a named country group offered during interactive selection.
type Preset struct {
	Key         string
	Description string
	countries   func(includeChina bool) []string
}

func (p Preset) Countries(includeChina bool) []string {
	return p.countries(includeChina)
}

func fixed(codes ...string) func(bool) []string {
	return func(bool) []string { return slices.Clone(codes) }
}

func regionCountries(key string) []string {
	for _, r := range Regions {
		if r.Key == key {
			return r.Countries
		}
	}
	return nil
}

// Presets are numbered 1-6 in this order.
var Presets = []Preset{
	{Key: "all", Description: "All countries (excl. China)", countries: AllCountries},
	{Key: "english", Description: "English-speaking", countries: fixed("US", "GB", "CA", "AU", "NZ", "IE")},
	{Key: "tier1", Description: "Tier 1 (US, GB, CA, AU)", countries: fixed("US", "GB", "CA", "AU")},
	{Key: "europe", Description: "Europe", countries: fixed(regionCountries("europe")...)},
	{Key: "asia", Description: "Asia Pacific (excl. China)", countries: func(bool) []string {
		var out []string
		for _, c := range regionCountries("asia_pacific") {
			if c != China {
				out = append(out, c)
			}
		}
		return out
	}},
	{Key: "latam", Description: "Latin America", countries: fixed(regionCountries("latin_america")...)},
}

// ResolveCountries upper-cases and validates codes, dropping duplicates.
// Unknown codes, and China without includeChina, are dropped with a warning.
func ResolveCountries(codes []string, includeChina bool) ([]string, []string) {
	var countries, warnings []string
	for _, raw := range codes {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		if !IsSupported(code) {
			warnings = append(warnings, fmt.Sprintf("Unknown country code: %s", code))
			continue
		}
		if code == China && !includeChina {
			warnings = append(warnings, fmt.Sprintf("Skipping %s - China requires special business documentation. Use --include-china to include.", code))
			continue
		}
		if !slices.Contains(countries, code) {
			countries = append(countries, code)
		}
	}
	return countries, warnings
}

// SelectCountries interprets an interactive answer: a preset number, a
// preset name, or comma-separated country codes.
func SelectCountries(input string, includeChina bool) ([]string, []string) {
	answer := strings.TrimSpace(input)
	for i, p := range Presets {
		if answer == fmt.Sprint(i+1) || strings.EqualFold(answer, p.Key) {
			return p.Countries(includeChina), nil
		}
	}
	return ResolveCountries(strings.Split(strings.ReplaceAll(answer, " ", ""), ","), includeChina)
}

// GroupByRegion splits codes by region, keeping region order and dropping
// empty regions.
func GroupByRegion(codes []string) []Region {
	var out []Region
	for _, r := range Regions {
		var hit []string
		for _, c := range codes {
			if slices.Contains(r.Countries, c) {
				hit = append(hit, c)
			}
		}
		if len(hit) > 0 {
			out = append(out, Region{Key: r.Key, Name: r.Name, Countries: hit})
		}
	}
	return out
}
