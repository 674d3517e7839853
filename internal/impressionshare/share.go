// Package impressionshare reads impression share custom reports and ranks
// search terms by how much of the available traffic they win.
package impressionshare

import (
	"strconv"
	"time"
)

const (
	MaxDays     = 30
	DefaultDays = 7

	lowShareCeiling = 0.3
	midShareCeiling = 0.5
)

// Row is one search term's share for one day and storefront. Shares are
// ratios in [0, 1].
type Row struct {
	Date             string   `json:"date"`
	AppName          string   `json:"app_name"`
	AdamID           string   `json:"adam_id"`
	Country          string   `json:"country"`
	SearchTerm       string   `json:"search_term"`
	LowShare         *float64 `json:"low_share"`
	HighShare        *float64 `json:"high_share"`
	Rank             string   `json:"rank"`
	SearchPopularity *int     `json:"search_popularity"`
}

// ShareRange renders "10-25%". A missing or zero low bound shows as 0 and a
// missing or zero high bound as "?".
func (r Row) ShareRange() string {
	if r.LowShare == nil && r.HighShare == nil {
		return "N/A"
	}
	low, high := "0", "?"
	if r.LowShare != nil {
		low = strconv.Itoa(int(*r.LowShare * 100))
	}
	if r.HighShare != nil && *r.HighShare != 0 {
		high = strconv.Itoa(int(*r.HighShare * 100))
	}
	return low + "-" + high + "%"
}

var rankLabels = map[string]string{
	"ONE":               "1",
	"TWO":               "2",
	"THREE":             "3",
	"FOUR":              "4",
	"GREATER_THAN_FOUR": ">4",
}

func (r Row) RankDisplay() string {
	if r.Rank == "" {
		return "N/A"
	}
	if label, ok := rankLabels[r.Rank]; ok {
		return label
	}
	return r.Rank
}

func (r Row) PopularityDisplay() string {
	if r.SearchPopularity == nil {
		return "N/A"
	}
	return strconv.Itoa(*r.SearchPopularity)
}

// AvgShare is the midpoint of the share range; a missing high bound falls
// back to the low bound.
func (r Row) AvgShare() float64 {
	if r.LowShare == nil && r.HighShare == nil {
		return 0
	}
	low := 0.0
	if r.LowShare != nil {
		low = *r.LowShare
	}
	high := low
	if r.HighShare != nil {
		high = *r.HighShare
	}
	return (low + high) / 2
}

type Bucket int

const (
	BucketNone Bucket = iota
	BucketLow
	BucketMid
	BucketHigh
)

// Bucket classifies the high share: below 30%, 30-50%, or 50% and up.
func (r Row) Bucket() Bucket {
	if r.HighShare == nil {
		return BucketNone
	}
	switch h := *r.HighShare; {
	case h < lowShareCeiling:
		return BucketLow
	case h < midShareCeiling:
		return BucketMid
	default:
		return BucketHigh
	}
}

// BelowShare reports whether the high share is known and under pct percent.
func (r Row) BelowShare(pct float64) bool {
	return r.HighShare != nil && *r.HighShare < pct/100
}

// Window caps days at MaxDays and returns a range ending yesterday that
// spans days calendar days.
func Window(today time.Time, days int) (start, end time.Time, capped bool) {
	if days > MaxDays {
		days = MaxDays
		capped = true
	}
	if days < 1 {
		days = 1
	}
	end = today.AddDate(0, 0, -1)
	return end.AddDate(0, 0, -(days - 1)), end, capped
}
