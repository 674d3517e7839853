package impressionshare

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var columnAliases = map[string][]string{
	"date":       {"date", "Date", "day", "Day"},
	"appName":    {"appName", "App Name", "app_name"},
	"adamId":     {"adamId", "Adam ID", "App ID", "appId"},
	"country":    {"countryOrRegion", "Country or Region", "Country Or Region", "country"},
	"searchTerm": {"searchTerm", "Search Term", "search_term"},
	"lowShare":   {"lowImpressionShare", "Low Impression Share", "low_impression_share"},
	"highShare":  {"highImpressionShare", "High Impression Share", "high_impression_share"},
	"rank":       {"rank", "Rank"},
	"popularity": {"searchPopularity", "Search Popularity", "popularity"},
}

// ParseCSV reads a downloaded impression share report. Column names are
// matched against the known camelCase and display spellings.
func ParseCSV(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read impression share header: %w", err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	rows := []Row{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read impression share row: %w", err)
		}
		pick := func(field string) string {
			for _, alias := range columnAliases[field] {
				if i, ok := index[alias]; ok && i < len(record) {
					if v := strings.TrimSpace(record[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, Row{
			Date:             pick("date"),
			AppName:          pick("appName"),
			AdamID:           pick("adamId"),
			Country:          strings.ToUpper(pick("country")),
			SearchTerm:       pick("searchTerm"),
			LowShare:         toShare(pick("lowShare")),
			HighShare:        toShare(pick("highShare")),
			Rank:             strings.ToUpper(pick("rank")),
			SearchPopularity: toInt(pick("popularity")),
		})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// toShare accepts ratios ("0.25") and percentages ("25%").
func toShare(raw string) *float64 {
	if raw == "" {
		return nil
	}
	percent := strings.HasSuffix(raw, "%")
	cleaned := strings.ReplaceAll(strings.TrimSuffix(raw, "%"), ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return nil
	}
	if percent {
		v /= 100
	}
	return &v
}

func toInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil
	}
	n := int(v)
	return &n
}
