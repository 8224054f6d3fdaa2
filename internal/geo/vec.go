package geo

import "math"

// Vec2 is a point or direction on the ground plane.
type Vec2 struct {
	X float64
	Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }

// Norm returns the unit vector, or zero for a zero-length input.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Heading returns the angle of v in degrees, [0, 360).
func (v Vec2) Heading() float64 {
	deg := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FromHeading returns the unit vector for a heading in degrees.
func FromHeading(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// AngleBetween returns the unsigned angle between two headings in degrees, [0, 180].
func AngleBetween(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// MoveTowards steps from towards to by at most maxStep.
func MoveTowards(from, to Vec2, maxStep float64) Vec2 {
	delta := to.Sub(from)
	dist := delta.Len()
	if dist <= maxStep || dist == 0 {
		return to
	}
	return from.Add(delta.Scale(maxStep / dist))
}
