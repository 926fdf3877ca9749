package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charliek/webhook/internal/constants"
)

// FilterSpec is the per-command selection and display configuration. It does
// not change for the lifetime of a command.
type FilterSpec struct {
	Method       string // exact, case-insensitive match; empty means any
	Limit        int    // how many recent records to fetch
	ShowHeaders  bool
	ShowFullBody bool
	PathPattern  string // substring (or regex when PathRegex) matched against the path
	PathRegex    bool
}

// IsEmpty returns true if no record would be excluded
func (s FilterSpec) IsEmpty() bool {
	return s.Method == "" && s.PathPattern == ""
}

// MatchesMethod returns true if the method passes the method filter
func (s FilterSpec) MatchesMethod(method string) bool {
	return s.Method == "" || strings.EqualFold(s.Method, method)
}

// Filter applies a FilterSpec to request records
type Filter struct {
	spec  FilterSpec
	regex *regexp.Regexp
}

// NewFilter creates a new filter from a FilterSpec
func NewFilter(spec FilterSpec) (*Filter, error) {
	f := &Filter{spec: spec}

	if len(spec.PathPattern) > constants.MaxPatternLength {
		return nil, fmt.Errorf("%w: pattern exceeds maximum length of %d characters", ErrInvalidPattern, constants.MaxPatternLength)
	}

	if spec.PathPattern != "" && spec.PathRegex {
		re, err := regexp.Compile(spec.PathPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		f.regex = re
	}

	return f, nil
}

// Spec returns the FilterSpec the filter was built from
func (f *Filter) Spec() FilterSpec {
	return f.spec
}

// Matches returns true if the record matches the filter criteria
func (f *Filter) Matches(rec RequestRecord) bool {
	if !f.spec.MatchesMethod(rec.Method) {
		return false
	}

	if f.spec.PathPattern != "" {
		if f.regex != nil {
			return f.regex.MatchString(rec.Path)
		}
		return strings.Contains(rec.Path, f.spec.PathPattern)
	}

	return true
}

// Apply returns the records that match, in their original order
func (f *Filter) Apply(records []RequestRecord) []RequestRecord {
	if f.spec.IsEmpty() {
		return records
	}

	result := make([]RequestRecord, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			result = append(result, rec)
		}
	}
	return result
}
