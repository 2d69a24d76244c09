package geo

import "fmt"

// Circle is a point with a radius in km. Crawlers usually search for stores
// within a circle, so this is the unit of a sample query.
type Circle struct {
	Center   Point   `json:"center"`
	RadiusKm float64 `json:"radius_km"`
}

func NewCircle(lat, lng, radiusKm float64) Circle {
	return Circle{Center: Point{Lat: lat, Lng: lng}, RadiusKm: radiusKm}
}

// Contains reports whether p lies within the circle. A zero radius only
// contains the centre itself.
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center, p) <= c.RadiusKm
}

// ContainsAll reports whether every point lies within the circle.
func (c Circle) ContainsAll(points ...Point) bool {
	for _, p := range points {
		if !c.Contains(p) {
			return false
		}
	}
	return true
}

// IntersectsArea is the circle-side view of Area.IntersectsCircle.
func (c Circle) IntersectsArea(a Area) bool {
	return a.IntersectsCircle(c)
}

// Step moves the centre by dlatKm north and dlngKm east keeping the radius.
func (c Circle) Step(dlatKm, dlngKm float64) Circle {
	return Circle{Center: c.Center.Step(dlatKm, dlngKm), RadiusKm: c.RadiusKm}
}

func (c Circle) String() string {
	return fmt.Sprintf("%s r=%.3fkm", c.Center, c.RadiusKm)
}
