package models

import (
	"encoding/json"
	"strings"
	"time"
)

// StringList accepts either a JSON array of strings or a single
// comma-separated string and normalizes both to trimmed, non-empty entries.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = NormalizeList(arr)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseList(s)
	return nil
}

// ParseList splits a comma-separated string into a normalized list.
func ParseList(s string) StringList {
	return NormalizeList(strings.Split(s, ","))
}

// NormalizeList trims every entry and drops empty ones.
func NormalizeList(items []string) StringList {
	out := StringList{}
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type Word struct {
	ID             string     `json:"id"`
	Date           string     `json:"date"` // YYYY-MM-DD
	WordNumber     int        `json:"wordNumber"`
	English        string     `json:"english"`
	IPA            string     `json:"ipa"`
	Context        string     `json:"context"`
	Meaning        string     `json:"meaning"`
	BanglaMeanings StringList `json:"banglaMeanings"`
	Synonyms       StringList `json:"synonyms"`
	Antonyms       StringList `json:"antonyms"`
	IsLearned      bool       `json:"isLearned"` // device-local, never written to the bin
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CollectionMeta is the metadata block stored alongside the words in the bin.
type CollectionMeta struct {
	TotalWords  int       `json:"totalWords"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Document is the full remote document: one JSON object holding the entire
// word collection. It is always read and replaced wholesale.
type Document struct {
	Words []Word         `json:"words"`
	Meta  CollectionMeta `json:"meta"`
}

type AddWordRequest struct {
	Date           string     `json:"date"`
	English        string     `json:"english"`
	IPA            string     `json:"ipa"`
	Context        string     `json:"context"`
	Meaning        string     `json:"meaning"`
	BanglaMeanings StringList `json:"banglaMeanings"`
	Synonyms       StringList `json:"synonyms"`
	Antonyms       StringList `json:"antonyms"`
}

// UpdateWordRequest carries a partial patch; nil fields are left untouched.
// id, date and createdAt are immutable and have no patch field.
type UpdateWordRequest struct {
	English        *string     `json:"english"`
	IPA            *string     `json:"ipa"`
	Context        *string     `json:"context"`
	Meaning        *string     `json:"meaning"`
	BanglaMeanings *StringList `json:"banglaMeanings"`
	Synonyms       *StringList `json:"synonyms"`
	Antonyms       *StringList `json:"antonyms"`
}

type WordCountResponse struct {
	Date         string `json:"date"`
	Count        int    `json:"count"`
	Total        int    `json:"total"`
	LimitReached bool   `json:"limitReached"`
}
