package sources

import (
	"database/sql"
	"strings"
)

// Normalizer rewrites a raw field before it is converted to a column value.
type Normalizer interface {
	Normalize(value sql.NullString) sql.NullString
}

type LeadingCharStrategy struct {
	leadingChar string
}

func (st LeadingCharStrategy) Normalize(value sql.NullString) sql.NullString {
	if value.Valid && st.leadingChar != "" {
		value.String = strings.TrimLeft(value.String, st.leadingChar)
	}
	return value
}

// StopWordsStrategy turns listed words into nulls.
type StopWordsStrategy struct {
	caseSensitive bool
	stopWords     map[string]bool
}

func (st StopWordsStrategy) Normalize(value sql.NullString) sql.NullString {
	if !value.Valid {
		return value
	}
	tested := strings.TrimSpace(value.String)
	if !st.caseSensitive {
		tested = strings.ToLower(tested)
	}
	if st.stopWords[tested] {
		return sql.NullString{}
	}
	return value
}

func NewStopWordsStrategy(caseSensitive bool, words []string) (result StopWordsStrategy) {
	result.caseSensitive = caseSensitive
	result.stopWords = make(map[string]bool)
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if !caseSensitive {
			word = strings.ToLower(word)
		}
		result.stopWords[word] = true
	}
	return
}

type chain []Normalizer

func (c chain) Normalize(value sql.NullString) sql.NullString {
	for _, n := range c {
		value = n.Normalize(value)
	}
	return value
}

// NewNormalizer returns nil when neither a leading char nor stop words are
// given. Stop words are comma separated and case insensitive.
func NewNormalizer(leadingChar, stopWords string) Normalizer {
	var c chain
	if leadingChar != "" {
		c = append(c, LeadingCharStrategy{leadingChar: leadingChar})
	}
	if stopWords != "" {
		c = append(c, NewStopWordsStrategy(false, strings.Split(stopWords, ",")))
	}
	if len(c) == 0 {
		return nil
	}
	return c
}
