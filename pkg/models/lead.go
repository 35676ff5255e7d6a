package models

import (
	"strings"
	"unicode/utf8"
)

// Source identifies the listing surface a lead was discovered on.
type Source string

const (
	SourceGoogleMaps  Source = "google_maps"
	SourceYellowPages Source = "yellow_pages"
)

// Lead represents a business discovered on a listing surface. A lead is
// owned by exactly one pipeline stage at a time; stages fill the fields they
// own via MergeField and never clear a populated field.
type Lead struct {
	Name        string  `json:"name" bson:"name"`
	Phone       string  `json:"phone" bson:"phone"`
	Address     string  `json:"address" bson:"address"`
	Category    string  `json:"category" bson:"category"`
	Website     string  `json:"website" bson:"website"`
	Email       string  `json:"email" bson:"email"`
	Description string  `json:"description" bson:"description"`
	Rating      float64 `json:"rating" bson:"rating"`
	RatingCount string  `json:"ratingCount" bson:"ratingCount"`
	Source      Source  `json:"source" bson:"source"`

	DetailURL     string `json:"detailUrl,omitempty" bson:"detailUrl,omitempty"`
	DetailsNeeded bool   `json:"detailsNeeded" bson:"detailsNeeded"`

	IsRelevant          bool   `json:"isRelevant" bson:"isRelevant"`
	CleanCategory       string `json:"cleanCategory" bson:"cleanCategory"`
	Summary             string `json:"summary" bson:"summary"`
	OriginalCategory    string `json:"originalCategory" bson:"originalCategory"`
	OriginalDescription string `json:"originalDescription" bson:"originalDescription"`
}

// Fingerprint derives the identity key used for deduplication. Two leads
// differing only in case or whitespace of name/phone/address collide.
func Fingerprint(name, phone, address string) string {
	return squash(name) + squash(phone) + squash(address)
}

func squash(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

// Fingerprint returns the lead's identity key.
func (l *Lead) Fingerprint() string {
	return Fingerprint(l.Name, l.Phone, l.Address)
}

// MergeField implements first-writer-wins per field: a populated existing
// value is never replaced, neither by empty nor by conflicting data.
func MergeField(existing, candidate string) string {
	if strings.TrimSpace(existing) != "" {
		return existing
	}
	return strings.TrimSpace(candidate)
}

// HasFullDetail reports whether a detail visit could add anything.
func (l *Lead) HasFullDetail() bool {
	return l.Phone != "" && l.Address != "" && l.Description != ""
}

// Qualify applies the acceptance gate and returns the violation reasons;
// an empty slice means the lead is accepted.
//
// Ratings above 5 pass deliberately: only negative ratings disqualify.
func (l *Lead) Qualify() []string {
	var reasons []string
	if utf8.RuneCountInString(strings.TrimSpace(l.Name)) < 2 {
		reasons = append(reasons, "Invalid name")
	}
	if l.Email == "" && l.Phone == "" {
		reasons = append(reasons, "No contact info")
	}
	if l.Rating < 0 {
		reasons = append(reasons, "Low rating")
	}
	return reasons
}

// ParseSource maps user input to a Source, accepting the menu digits used by
// the interactive prompt as well as case-insensitive names.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "google_maps", "google maps", "maps":
		return SourceGoogleMaps, true
	case "2", "yellow_pages", "yellow pages":
		return SourceYellowPages, true
	}
	return "", false
}
