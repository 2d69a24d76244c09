package models

import (
	"fmt"
	"strings"
)

// Row is one reference point, usually a postal code centroid.
type Row struct {
	Name       string  `json:"name"`
	PostalCode string  `json:"postal_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Metadata is what the reverse index stores for every reference point and
// what each sample location carries to the crawler.
type Metadata struct {
	PostalCode string `json:"postal_code,omitempty"`
	Name       string `json:"name,omitempty"`
}

func (r Row) Metadata() Metadata {
	return Metadata{PostalCode: r.PostalCode, Name: r.Name}
}

// Validate reports the first missing or out of range field.
func (r Row) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if strings.TrimSpace(r.PostalCode) == "" {
		return fmt.Errorf("missing postal code")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range", r.Longitude)
	}
	return nil
}
