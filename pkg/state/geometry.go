package state

// Point is a position in the workspace grid or on the layout plane.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dimensions is a width/height pair.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Geometry is a rectangle in layout coordinates.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin returns the top-left corner of the rectangle.
func (g Geometry) Origin() Point {
	return Point{X: g.X, Y: g.Y}
}

// Size returns the dimensions of the rectangle.
func (g Geometry) Size() Dimensions {
	return Dimensions{Width: g.Width, Height: g.Height}
}
