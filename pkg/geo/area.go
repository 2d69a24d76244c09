package geo

// Area is an axis-aligned box between its south-west and north-east corners.
type Area struct {
	SW Point `json:"sw" yaml:"south_west"`
	NE Point `json:"ne" yaml:"north_east"`
}

// NewArea builds an Area from any two opposite corners.
func NewArea(p1, p2 Point) Area {
	return Area{
		SW: Point{Lat: min(p1.Lat, p2.Lat), Lng: min(p1.Lng, p2.Lng)},
		NE: Point{Lat: max(p1.Lat, p2.Lat), Lng: max(p1.Lng, p2.Lng)},
	}
}

// Contains reports whether p lies inside the area, edges included.
func (a Area) Contains(p Point) bool {
	if p.Lat < a.SW.Lat || p.Lat > a.NE.Lat {
		return false
	}
	if p.Lng < a.SW.Lng || p.Lng > a.NE.Lng {
		return false
	}
	return true
}

// Center is the arithmetic midpoint of the two corners.
func (a Area) Center() Point {
	return Point{Lat: (a.SW.Lat + a.NE.Lat) / 2, Lng: (a.SW.Lng + a.NE.Lng) / 2}
}

// Corners returns SW, NE, south-east and north-west in that order.
func (a Area) Corners() [4]Point {
	return [4]Point{
		a.SW,
		a.NE,
		{Lat: a.SW.Lat, Lng: a.NE.Lng},
		{Lat: a.NE.Lat, Lng: a.SW.Lng},
	}
}

// Diagonal is the great-circle distance between the two corners.
func (a Area) Diagonal() float64 {
	return Distance(a.SW, a.NE)
}

// IntersectsCircle is an approximate test and is not mathematically strict.
// It treats the area as its circumcircle grown by c.RadiusKm and reports
// whether that circle contains the centre of c. The result over-approximates
// near the corners of the box; callers that need exact geometry must not
// rely on it.
func (a Area) IntersectsCircle(c Circle) bool {
	center := a.Center()
	circum := Circle{Center: center, RadiusKm: a.Diagonal()/2 + c.RadiusKm}
	return circum.Contains(c.Center)
}
