package model

import (
	"errors"
	"net/url"
	"strings"
)

// ScoreType errors.
var (
	// ErrUnknownScoreType is returned when a score type name is not recognized.
	ErrUnknownScoreType = errors.New("unknown score type")
	// ErrEmptyScoreType is returned when the score type name is empty.
	ErrEmptyScoreType = errors.New("score type cannot be empty")
)

// ScoreType identifies one admission track of the listing. Records of
// different score types are never merged or deduplicated against each other.
type ScoreType string

// Supported score types.
const (
	// ScoreTypeSAY is the numerical (sayısal) track.
	ScoreTypeSAY ScoreType = "say"
	// ScoreTypeEA is the equal-weight (eşit ağırlık) track.
	ScoreTypeEA ScoreType = "ea"
	// ScoreTypeSOZ is the verbal (sözel) track.
	ScoreTypeSOZ ScoreType = "soz"
	// ScoreTypeDIL is the foreign language (dil) track.
	ScoreTypeDIL ScoreType = "dil"
	// ScoreTypeTYT is the associate degree track. It uses the reduced layout.
	ScoreTypeTYT ScoreType = "tyt"
)

// DefaultBaseURL is the origin hosting the listing pages.
const DefaultBaseURL = "https://yokatlas.yok.gov.tr"

const (
	generalListingPath = "/tercih-sihirbazi-t4-tablo.php"
	reducedListingPath = "/tercih-sihirbazi-t3-tablo.php"
)

// AllScoreTypes returns every supported score type in batch order.
func AllScoreTypes() []ScoreType {
	return []ScoreType{ScoreTypeSAY, ScoreTypeEA, ScoreTypeSOZ, ScoreTypeDIL, ScoreTypeTYT}
}

// ParseScoreType validates and normalizes a score type name.
func ParseScoreType(name string) (ScoreType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", ErrEmptyScoreType
	}
	st := ScoreType(normalized)
	for _, known := range AllScoreTypes() {
		if st == known {
			return st, nil
		}
	}
	return "", ErrUnknownScoreType
}

// String returns the short name of the score type.
func (s ScoreType) String() string {
	return string(s)
}

// DisplayName returns the human-readable name used in log output.
func (s ScoreType) DisplayName() string {
	switch s {
	case ScoreTypeSAY:
		return "sayısal"
	case ScoreTypeEA:
		return "eşit ağırlık"
	case ScoreTypeSOZ:
		return "sözel"
	case ScoreTypeDIL:
		return "dil"
	case ScoreTypeTYT:
		return "TYT"
	default:
		return string(s)
	}
}

// Variant returns the schema variant used by listings of this score type.
func (s ScoreType) Variant() Variant {
	if s == ScoreTypeTYT {
		return ReducedVariant
	}
	return GeneralVariant
}

// ListingURL returns the address of the first listing page for this score
// type under baseURL. An empty baseURL selects DefaultBaseURL.
func (s ScoreType) ListingURL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if s == ScoreTypeTYT {
		return baseURL + reducedListingPath
	}

	// The site spells the verbal track with its Turkish letter.
	param := string(s)
	if s == ScoreTypeSOZ {
		param = "söz"
	}
	return baseURL + generalListingPath + "?p=" + url.QueryEscape(param)
}

// PartitionFile returns the default file name of the persisted partition.
func (s ScoreType) PartitionFile() string {
	return "universities_data_" + string(s) + ".json"
}
