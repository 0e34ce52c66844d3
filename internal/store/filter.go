package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charliek/mplog/internal/domain"
)

// MaxPatternLength is the maximum allowed length for filter patterns
// to prevent excessively complex patterns from untrusted query strings
const MaxPatternLength = 256

// Filter applies an EventFilter to ingested records
type Filter struct {
	filter domain.EventFilter
	regex  *regexp.Regexp
}

// NewFilter creates a new filter from an EventFilter
func NewFilter(filter domain.EventFilter) (*Filter, error) {
	f := &Filter{filter: filter}

	if len(filter.Pattern) > MaxPatternLength {
		return nil, fmt.Errorf("%w: pattern exceeds maximum length of %d characters", domain.ErrInvalidPattern, MaxPatternLength)
	}

	if filter.Pattern != "" && filter.IsRegex {
		re, err := regexp.Compile(filter.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPattern, err)
		}
		f.regex = re
	}

	return f, nil
}

// Matches returns true if the event matches the filter criteria
func (f *Filter) Matches(ev domain.Event) bool {
	if !f.filter.MatchesPID(ev.PID) {
		return false
	}

	if !f.filter.MatchesLevel(ev.Entry.Level) {
		return false
	}

	if f.filter.Pattern != "" {
		if f.regex != nil {
			if !f.regex.MatchString(ev.Entry.Message) {
				return false
			}
		} else {
			if !strings.Contains(ev.Entry.Message, f.filter.Pattern) {
				return false
			}
		}
	}

	return true
}
