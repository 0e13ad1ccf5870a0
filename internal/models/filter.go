package models

import "fmt"

// FilterType represents a filter for selecting projects
type FilterType string

const (
	// FilterAll selects all projects
	FilterAll FilterType = "all"

	// FilterNeedsBuild selects projects whose output is stale
	FilterNeedsBuild FilterType = "needs-build"

	// FilterUpToDate selects projects whose output is current
	FilterUpToDate FilterType = "up-to-date"

	// FilterHasOutput selects projects whose output file exists
	FilterHasOutput FilterType = "has-output"

	// FilterNoOutput selects projects without an output file
	FilterNoOutput FilterType = "no-output"
)

// IsValid checks if the filter type is valid
func (f FilterType) IsValid() bool {
	switch f {
	case FilterAll, FilterNeedsBuild, FilterUpToDate, FilterHasOutput, FilterNoOutput:
		return true
	default:
		return false
	}
}

// String returns the string representation of FilterType
func (f FilterType) String() string {
	return string(f)
}

// ParseFilterType parses a string into a FilterType
func ParseFilterType(s string) (FilterType, error) {
	ft := FilterType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid filter type: %s (must be all, needs-build, up-to-date, has-output, or no-output)", s)
	}
	return ft, nil
}

// MatchesStatus checks if a ProjectStatus matches this filter
func (f FilterType) MatchesStatus(status *ProjectStatus) bool {
	switch f {
	case FilterAll:
		return true
	case FilterNeedsBuild:
		return status.NeedsBuilding
	case FilterUpToDate:
		return !status.NeedsBuilding
	case FilterHasOutput:
		return status.HasOutput
	case FilterNoOutput:
		return !status.HasOutput
	default:
		return false
	}
}
