package pipeline

import (
	"sort"
	"time"

	"seafreight/pkg/contracts/domain"
)

// ApplyFilters returns the subsequence of shipments matching the selection,
// in input order. Predicates combine with AND; each one only applies when its
// selection is non-empty, so the zero FilterState returns the input
// unchanged. An empty selection means "unfiltered", never "match nothing".
//
// The ETA window is inclusive on both ends, end-of-day inclusive on the right:
// a shipment due exactly on the end date stays in. Shipments without an ETA
// drop out as soon as either bound is set — no date, no window membership.
func (e *Engine) ApplyFilters(shipments []domain.Shipment, state domain.FilterState) []domain.Shipment {
	origins := stringSet(state.Origins)
	destinations := stringSet(state.Destinations)
	statuses := stringSet(state.Statuses)

	out := make([]domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if len(origins) > 0 && !origins[s.OriginPort] {
			continue
		}
		if len(destinations) > 0 && !destinations[s.DestinationPort] {
			continue
		}
		if len(statuses) > 0 && !statuses[s.Status] {
			continue
		}
		if state.ETAFrom != nil || state.ETATo != nil {
			if s.ETA == nil {
				continue
			}
			if state.ETAFrom != nil && s.ETA.Before(dayOf(*state.ETAFrom)) {
				continue
			}
			if state.ETATo != nil && !s.ETA.Before(dayOf(*state.ETATo).AddDate(0, 0, 1)) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// Options builds the filter catalog from the loaded shipments: the sorted
// union of both port columns, the sorted distinct statuses, and the ETA
// bounds. The presentation layer seeds its widgets from this.
func (e *Engine) Options(shipments []domain.Shipment) domain.FilterOptions {
	portSet := make(map[string]struct{})
	statusSet := make(map[string]struct{})
	var etaMin, etaMax *time.Time

	for i := range shipments {
		s := &shipments[i]
		if s.OriginPort != "" {
			portSet[s.OriginPort] = struct{}{}
		}
		if s.DestinationPort != "" {
			portSet[s.DestinationPort] = struct{}{}
		}
		if s.Status != "" {
			statusSet[s.Status] = struct{}{}
		}
		if s.ETA != nil {
			if etaMin == nil || s.ETA.Before(*etaMin) {
				t := *s.ETA
				etaMin = &t
			}
			if etaMax == nil || s.ETA.After(*etaMax) {
				t := *s.ETA
				etaMax = &t
			}
		}
	}

	return domain.FilterOptions{
		Ports:    sortedKeys(portSet),
		Statuses: sortedKeys(statusSet),
		ETAMin:   etaMin,
		ETAMax:   etaMax,
	}
}

func stringSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
