package domain

import "time"

// FilterState is the value object describing one dashboard filter selection.
// It is passed explicitly into every filter/aggregate call — the engine keeps
// no ambient selection, and the server stores none between requests.
//
// Empty selections mean "unfiltered", not "match nothing". That is a
// deliberate UX contract: clearing a multiselect widget must restore the full
// view, so each predicate only applies when its selection is non-empty.
type FilterState struct {
	// Origins and Destinations each restrict their port column when
	// non-empty. Matching is exact — selections come from FilterOptions,
	// which lists the values actually present.
	Origins      []string `json:"origins,omitempty"`
	Destinations []string `json:"destinations,omitempty"`

	// Statuses restricts the shipment status column when non-empty.
	Statuses []string `json:"statuses,omitempty"`

	// ETAFrom and ETATo bound the ETA window. Both are inclusive; ETATo is
	// end-of-day inclusive, so a shipment due exactly on the end date stays
	// in. Either side may be nil (unbounded).
	ETAFrom *time.Time `json:"eta_from,omitempty"`
	ETATo   *time.Time `json:"eta_to,omitempty"`
}

// IsZero reports whether the state filters nothing — the reset-filters state.
func (f FilterState) IsZero() bool {
	return len(f.Origins) == 0 && len(f.Destinations) == 0 &&
		len(f.Statuses) == 0 && f.ETAFrom == nil && f.ETATo == nil
}

// FilterOptions is the catalog the presentation layer populates its filter
// widgets from: the values actually present in the loaded snapshot.
type FilterOptions struct {
	// Ports is the sorted union of origin and destination ports. One list
	// serves both selects, matching how dispatchers think about lanes.
	Ports []string `json:"ports"`

	// Statuses is the sorted set of distinct shipment statuses.
	Statuses []string `json:"statuses"`

	// ETAMin and ETAMax bound the ETA values present; nil when no shipment
	// carries an ETA.
	ETAMin *time.Time `json:"eta_min,omitempty"`
	ETAMax *time.Time `json:"eta_max,omitempty"`
}
