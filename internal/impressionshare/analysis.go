package impressionshare

import (
	"cmp"
	"slices"
	"strings"
)

// Latest keeps the most recent row per search term and storefront. Output
// order follows the first appearance of each term.
func Latest(rows []Row) []Row {
	pos := map[string]int{}
	var out []Row
	for _, r := range rows {
		key := r.SearchTerm + "|" + r.Country
		i, ok := pos[key]
		if !ok {
			pos[key] = len(out)
			out = append(out, r)
			continue
		}
		if r.Date > out[i].Date {
			out[i] = r
		}
	}
	return out
}

// SortByShare orders rows by AvgShare, lowest first.
func SortByShare(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(a.AvgShare(), b.AvgShare())
	})
}

type AnalyzeOptions struct {
	App    string
	Search string
	// MinShare keeps only terms whose high share is below this percentage.
	MinShare *float64
}

// Analyze reduces rows to the latest per term, applies the filters and
// sorts by share, lowest first.
func Analyze(rows []Row, opts AnalyzeOptions) []Row {
	app := strings.ToLower(opts.App)
	search := strings.ToLower(opts.Search)
	var out []Row
	for _, r := range Latest(rows) {
		if app != "" && (r.AppName == "" || !strings.Contains(strings.ToLower(r.AppName), app)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.SearchTerm), search) {
			continue
		}
		if opts.MinShare != nil && !r.BelowShare(*opts.MinShare) {
			continue
		}
		out = append(out, r)
	}
	SortByShare(out)
	return out
}

// BucketCounts tallies rows per share bucket.
type BucketCounts struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

func (b *BucketCounts) add(r Row) {
	switch r.Bucket() {
	case BucketLow:
		b.Low++
	case BucketMid:
		b.Mid++
	case BucketHigh:
		b.High++
	}
}

func CountBuckets(rows []Row) BucketCounts {
	var b BucketCounts
	for _, r := range rows {
		b.add(r)
	}
	return b
}

type CountrySummary struct {
	Country     string  `json:"country"`
	SearchTerms int     `json:"search_terms"`
	AvgShare    float64 `json:"avg_share"`
	BucketCounts
}

type AppSummary struct {
	AppName   string           `json:"app_name"`
	Countries []CountrySummary `json:"countries"`
}

// Summary groups rows by app then storefront.
type Summary struct {
	Apps        []AppSummary `json:"apps"`
	SearchTerms int          `json:"search_terms"`
	Countries   int          `json:"countries"`
}

// Summarize counts unique terms, the mean of positive average shares, and
// bucket counts per app and storefront. Apps are alphabetical; storefronts
// are ordered by term count, highest first.
func Summarize(rows []Row) Summary {
	byApp := map[string]map[string][]Row{}
	for _, r := range rows {
		app := r.AppName
		if app == "" {
			app = "Unknown"
		}
		if byApp[app] == nil {
			byApp[app] = map[string][]Row{}
		}
		byApp[app][r.Country] = append(byApp[app][r.Country], r)
	}

	var s Summary
	countries := map[string]bool{}
	apps := make([]string, 0, len(byApp))
	for app := range byApp {
		apps = append(apps, app)
	}
	slices.Sort(apps)
	for _, app := range apps {
		as := AppSummary{AppName: app}
		for country, items := range byApp[app] {
			cs := CountrySummary{Country: country}
			terms := map[string]bool{}
			var sum float64
			var n int
			for _, r := range items {
				terms[r.SearchTerm] = true
				if avg := r.AvgShare(); avg > 0 {
					sum += avg
					n++
				}
				cs.add(r)
			}
			cs.SearchTerms = len(terms)
			if n > 0 {
				cs.AvgShare = sum / float64(n)
			}
			as.Countries = append(as.Countries, cs)
			s.SearchTerms += cs.SearchTerms
			countries[country] = true
		}
		slices.SortStableFunc(as.Countries, func(a, b CountrySummary) int {
			return cmp.Or(cmp.Compare(b.SearchTerms, a.SearchTerms), strings.Compare(a.Country, b.Country))
		})
		s.Apps = append(s.Apps, as)
	}
	s.Countries = len(countries)
	return s
}
