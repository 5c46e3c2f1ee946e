package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/ChicagoDave/zoneplanner/pkg/geo"
	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

const (
	defaultWidth = 800
	margin       = 20

	backgroundStyle = "fill:rgb(255,255,255)"
	mainAreaStyle   = "fill:rgb(245,245,240);stroke:rgb(90,90,90);stroke-width:2"
	zoneStyle       = "fill:%s;fill-opacity:0.45;stroke:%s;stroke-width:1.5"
	plantStyle      = "fill:rgb(30,90,30)"
	labelStyle      = "font-family:sans-serif;font-size:12px;text-anchor:middle;fill:rgb(20,20,20)"
)

// projection maps coordinates onto the canvas with an equirectangular
// projection scaled at the field's latitude. North is up.
type projection struct {
	origin geo.Coordinate
	cosLat float64
	scale  float64
	height int
}

func newProjection(bounds []geo.Coordinate, width int) projection {
	mn, mx := geo.Polygon(bounds).BoundingBox()
	cosLat := math.Cos((mn.Lat + mx.Lat) / 2 * math.Pi / 180)
	w := (mx.Lng - mn.Lng) * cosLat
	h := mx.Lat - mn.Lat
	inner := float64(width - 2*margin)
	scale := 1.0
	if w > 0 {
		scale = inner / w
	}
	if h > 0 && (w <= 0 || h > w) {
		scale = inner / h
	}
	return projection{
		origin: geo.Coordinate{Lat: mx.Lat, Lng: mn.Lng},
		cosLat: cosLat,
		scale:  scale,
		height: int(math.Ceil(h*scale)) + 2*margin,
	}
}

func (p projection) point(c geo.Coordinate) (int, int) {
	x := (c.Lng-p.origin.Lng)*p.cosLat*p.scale + margin
	y := (p.origin.Lat-c.Lat)*p.scale + margin
	return int(math.Round(x)), int(math.Round(y))
}

func (p projection) polygon(vertices []geo.Coordinate) ([]int, []int) {
	xs := make([]int, len(vertices))
	ys := make([]int, len(vertices))
	for i, v := range vertices {
		xs[i], ys[i] = p.point(v)
	}
	return xs, ys
}

// errWriter remembers the first write error so the canvas calls, which
// do not return errors, can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

// SVG draws the main area, the zones in their colors, optional plants and a
// label at each zone centroid.
func SVG(w io.Writer, zones []zoning.Zone, mainArea []geo.Coordinate, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	bounds := mainArea
	if len(bounds) < 3 {
		for _, z := range zones {
			bounds = append(bounds, z.Coordinates...)
		}
	}
	if len(bounds) == 0 {
		return fmt.Errorf("rendering svg: nothing to draw")
	}
	proj := newProjection(bounds, width)

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, proj.height)
	canvas.Title("Irrigation zones")
	canvas.Rect(0, 0, width, proj.height, backgroundStyle)

	if len(mainArea) >= 3 {
		xs, ys := proj.polygon(mainArea)
		canvas.Polygon(xs, ys, mainAreaStyle)
	}

	for _, z := range zones {
		if len(z.Coordinates) < 3 {
			continue
		}
		color := z.Color
		if color == "" {
			color = "rgb(128,128,128)"
		}
		canvas.Gid(z.ID)
		xs, ys := proj.polygon(z.Coordinates)
		canvas.Polygon(xs, ys, fmt.Sprintf(zoneStyle, color, color))
		if opts.IncludePlants {
			for _, p := range z.Plants {
				px, py := proj.point(p.Position)
				canvas.Circle(px, py, 2, plantStyle)
			}
		}
		cx, cy := proj.point(geo.Polygon(z.Coordinates).Centroid())
		canvas.Text(cx, cy, fmt.Sprintf("%s (%.1f)", z.Name, z.TotalWaterNeed), labelStyle)
		canvas.Gend()
	}

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("rendering svg: %w", ew.err)
	}
	return nil
}
