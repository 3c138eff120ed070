package exports

import "baletrack/frontend/search"

type PageData struct {
	Filter    search.BaleFilter
	Shipments []ShipmentOption
}

type ShipmentOption struct {
	ID    string
	Label string
}
