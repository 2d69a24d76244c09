package models

import "geosampler/pkg/geo"

// SampleCircle is one query circle produced by the location iterator,
// annotated with the nearest reference point when one was found.
type SampleCircle struct {
	geo.Circle
	Meta *Metadata
}

// SampleLocation is the record handed to the crawling layer.
type SampleLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RadiusKm  float64   `json:"radius_km"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	Territory string    `json:"territory,omitempty"`
	Geohash   string    `json:"geohash,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
}

func NewSampleLocation(territory string, c SampleCircle) SampleLocation {
	return SampleLocation{
		Latitude:  c.Center.Lat,
		Longitude: c.Center.Lng,
		RadiusKm:  c.RadiusKm,
		Metadata:  c.Meta,
		Territory: territory,
	}
}

// SampleRequest asks a sampler worker for the locations of one or more
// territories. An empty Territories list means every territory in the
// bundle; a zero RadiusKm means the configured default.
type SampleRequest struct {
	ID          string   `json:"id"`
	RadiusKm    float64  `json:"radius_km"`
	Territories []string `json:"territories,omitempty"`
}
