package domain

import "time"

// WarehouseEntry is one inbound/outbound register row. A nil OutboundDate
// means the goods are still on hand.
type WarehouseEntry struct {
	Location     string     `json:"location,omitempty" csv:"Location"`
	Quantity     int64      `json:"quantity" csv:"Quantity"`
	InboundDate  *time.Time `json:"inbound_date,omitempty" csv:"Inbound_Date"`
	OutboundDate *time.Time `json:"outbound_date,omitempty" csv:"Outbound_Date"`
}

// OnHandAt reports whether the entry still counts as inventory at the given
// day: not yet shipped out, or no outbound recorded at all.
func (w *WarehouseEntry) OnHandAt(day time.Time) bool {
	return w.OutboundDate == nil || !w.OutboundDate.Before(day)
}
