// Package geo provides the spherical primitives used by the quadtree engine:
// points, circles and axis-aligned areas on the globe. Distances are in
// kilometres, coordinates in degrees.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for every distance calculation.
const EarthRadiusKm = 6371.0

// Point is a location on the globe.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func NewPoint(lat, lng float64) Point {
	return Point{Lat: lat, Lng: lng}
}

func (p Point) LatRad() float64 { return radians(p.Lat) }

func (p Point) LngRad() float64 { return radians(p.Lng) }

// Distance returns the great-circle distance between p and other in km.
func (p Point) Distance(other Point) float64 {
	return Distance(p, other)
}

// Step returns the point dlatKm north and dlngKm east of p.
// The longitude offset is scaled by 1/cos(lat) to account for meridian
// convergence, so the result is only approximately invertible and is
// meaningless close to the poles.
func (p Point) Step(dlatKm, dlngKm float64) Point {
	dlat := degrees(dlatKm / EarthRadiusKm)
	dlng := degrees(dlngKm / EarthRadiusKm / math.Cos(p.LatRad()))
	return Point{Lat: p.Lat + dlat, Lng: p.Lng + dlng}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// Distance computes the great-circle distance in km using the atan2 form of
// the spherical law, which stays well conditioned for both small and
// antipodal separations.
func Distance(a, b Point) float64 {
	lat1, lat2 := a.LatRad(), b.LatRad()
	delta := b.LngRad() - a.LngRad()

	cl1, sl1 := math.Cos(lat1), math.Sin(lat1)
	cl2, sl2 := math.Cos(lat2), math.Sin(lat2)
	cd, sd := math.Cos(delta), math.Sin(delta)

	y := math.Sqrt(math.Pow(cl2*sd, 2) + math.Pow(cl1*sl2-sl1*cl2*cd, 2))
	x := sl1*sl2 + cl1*cl2*cd
	return math.Atan2(y, x) * EarthRadiusKm
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
