// Package api contains the versioned request contract of the SeaFreight360
// dashboard API. Version v1 is the current stable surface.
package api

// FilterQuery carries the dashboard filter selection exactly as it arrives
// in query parameters. Empty fields mean "unfiltered"; dates are YYYY-MM-DD.
// Multi-value fields accept repeated keys and comma-separated lists; the
// transport layer splits them before validation.
type FilterQuery struct {
	Origins      []string `json:"origins" query:"origins" validate:"omitempty,max=25,dive,min=1,max=120"`
	Destinations []string `json:"destinations" query:"destinations" validate:"omitempty,max=25,dive,min=1,max=120"`
	Statuses     []string `json:"statuses" query:"statuses" validate:"omitempty,max=25,dive,min=1,max=60"`
	ETAFrom      string   `json:"eta_from" query:"eta_from" validate:"omitempty,datetime=2006-01-02"`
	ETATo        string   `json:"eta_to" query:"eta_to" validate:"omitempty,datetime=2006-01-02"`
}

// IsZero reports whether no filter parameter was supplied at all.
func (q FilterQuery) IsZero() bool {
	return len(q.Origins) == 0 && len(q.Destinations) == 0 && len(q.Statuses) == 0 &&
		q.ETAFrom == "" && q.ETATo == ""
}

// UploadFields names the multipart form fields of a dataset upload, in
// canonical collection order. Every field is optional; absent collections
// fall back to the bundled default files.
var UploadFields = []string{"shipments", "invoices", "warehouse", "clients"}
