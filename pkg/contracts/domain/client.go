package domain

import "time"

// ClientRecord is one client delivery/pickup row from the clients file.
type ClientRecord struct {
	ClientID        string     `json:"client_id" csv:"Client_ID" validate:"required"`
	Name            string     `json:"name,omitempty" csv:"Name"`
	DeliveryAddress string     `json:"delivery_address,omitempty" csv:"Delivery_Address"`
	Status          string     `json:"status,omitempty" csv:"Status"`
	PickupDate      *time.Time `json:"pickup_date,omitempty" csv:"Pickup_Date"`
}
