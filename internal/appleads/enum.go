package appleads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Vocabulary lists the values an enumerated API field is documented to take.
type Vocabulary interface {
	Values() []string
}

type EnumKind int

const (
	EnumUnset EnumKind = iota
	EnumKnown
	EnumUnknown
)

// Enum is an enumerated API field. It keeps values outside its vocabulary
// verbatim instead of failing to decode them.
type Enum[V Vocabulary] struct {
	value string
	set   bool
}

func EnumOf[V Vocabulary](value string) Enum[V] {
	return Enum[V]{value: value, set: true}
}

func (e Enum[V]) Kind() EnumKind {
	if !e.set {
		return EnumUnset
	}
	var vocab V
	if slices.Contains(vocab.Values(), e.value) {
		return EnumKnown
	}
	return EnumUnknown
}

// String returns the raw value, or "" when unset.
func (e Enum[V]) String() string { return e.value }

func (e Enum[V]) IsSet() bool { return e.set }

func (e Enum[V]) MarshalJSON() ([]byte, error) {
	if !e.set {
		return []byte("null"), nil
	}
	return json.Marshal(e.value)
}

func (e *Enum[V]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*e = Enum[V]{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*e = Enum[V]{value: "OPT_IN", set: true}
		return nil
	case bytes.Equal(data, []byte("false")):
		*e = Enum[V]{value: "OPT_OUT", set: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("enum: %w", err)
	}
	*e = Enum[V]{value: s, set: true}
	return nil
}

type campaignStatuses struct{}

func (campaignStatuses) Values() []string { return []string{"ENABLED", "PAUSED"} }

type servingStatuses struct{}

func (servingStatuses) Values() []string { return []string{"RUNNING", "NOT_RUNNING"} }

type keywordStatuses struct{}

func (keywordStatuses) Values() []string { return []string{"ACTIVE", "PAUSED"} }

type matchTypes struct{}

func (matchTypes) Values() []string { return []string{"EXACT", "BROAD"} }

type searchMatchModes struct{}

func (searchMatchModes) Values() []string { return []string{"OPT_IN", "OPT_OUT"} }

type (
	// CampaignStatus is shared by campaigns and ad groups.
	CampaignStatus = Enum[campaignStatuses]
	ServingStatus  = Enum[servingStatuses]
	KeywordStatus  = Enum[keywordStatuses]
	MatchType      = Enum[matchTypes]
	SearchMatch    = Enum[searchMatchModes]
)

var (
	StatusEnabled = EnumOf[campaignStatuses]("ENABLED")
	StatusPaused  = EnumOf[campaignStatuses]("PAUSED")

	KeywordActive = EnumOf[keywordStatuses]("ACTIVE")
	KeywordPaused = EnumOf[keywordStatuses]("PAUSED")

	MatchExact = EnumOf[matchTypes]("EXACT")
	MatchBroad = EnumOf[matchTypes]("BROAD")

	SearchMatchOn  = EnumOf[searchMatchModes]("OPT_IN")
	SearchMatchOff = EnumOf[searchMatchModes]("OPT_OUT")
)

// ParseCampaignStatus accepts ENABLED or PAUSED in any case.
func ParseCampaignStatus(raw string) (CampaignStatus, error) {
	return parseKnown[campaignStatuses](raw, "status")
}

func ParseKeywordStatus(raw string) (KeywordStatus, error) {
	return parseKnown[keywordStatuses](raw, "keyword status")
}

func ParseMatchType(raw string) (MatchType, error) {
	return parseKnown[matchTypes](raw, "match type")
}

func parseKnown[V Vocabulary](raw, what string) (Enum[V], error) {
	e := EnumOf[V](upperTrim(raw))
	if e.Kind() != EnumKnown {
		var vocab V
		return Enum[V]{}, fmt.Errorf("invalid %s %q (expected one of %v)", what, raw, vocab.Values())
	}
	return e, nil
}
