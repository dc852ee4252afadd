package importer

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/LaserNest/internal/model"
)

// outline is an ordered list of points along a path.
type outline []model.Point2D

// boundingBox returns the min and max corners of the points.
func (o outline) boundingBox() (model.Point2D, model.Point2D) {
	if len(o) == 0 {
		return model.Point2D{}, model.Point2D{}
	}
	min, max := o[0], o[0]
	for _, p := range o[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// length returns the polyline length, including the closing segment when closed.
func (o outline) length(closed bool) float64 {
	var total float64
	for i := 1; i < len(o); i++ {
		total += distance(o[i-1], o[i])
	}
	if closed && len(o) > 2 {
		total += distance(o[len(o)-1], o[0])
	}
	return total
}

func distance(a, b model.Point2D) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE and ARC entities into contours.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDXF parses a DXF drawing into one source file. Every LWPOLYLINE,
// CIRCLE, ARC and LINE becomes a selected path with its exact length, and
// the file's dimensions are the bounding box of all geometry.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.errorf("Cannot open DXF file: %v", err)
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.errorf("DXF file contains no entities")
		return result
	}

	file := model.SourceFile{
		Name: filepath.Base(path),
		Type: model.FileDXF,
	}
	var points outline
	var segments []segment
	skipped := 0

	addPath := func(kind string, length float64) {
		if length <= 0 {
			return
		}
		file.Paths = append(file.Paths, model.PathData{
			ID:       fmt.Sprintf("%s-%d", kind, len(file.Paths)+1),
			Length:   length,
			Selected: true,
		})
	}

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := lwPolylineToOutline(e)
			if len(o) < 2 {
				result.warnf("Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			points = append(points, o...)
			addPath("lwpolyline", o.length(e.Closed))

		case *entity.Circle:
			points = append(points, circleToOutline(e, 64)...)
			addPath("circle", 2*math.Pi*e.Radius)

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			points = append(points, pts...)
			segments = append(segments, pointsToSegments(pts)...)
			addPath("arc", e.Circle.Radius*arcSweep(e))

		case *entity.Line:
			seg := segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			}
			points = append(points, seg.start, seg.end)
			segments = append(segments, seg)
			addPath("line", distance(seg.start, seg.end))

		default:
			skipped++
		}
	}

	if skipped > 0 {
		result.warnf("Skipped %d unsupported entities", skipped)
	}
	if open := countOpenContours(segments, 0.01); open > 0 {
		result.warnf("%d open contour(s) found; check the drawing for gaps", open)
	}

	if len(file.Paths) == 0 {
		result.warnf("No cuttable geometry found, the part will use the default size")
		result.Files = append(result.Files, file)
		return result
	}

	min, max := points.boundingBox()
	file.Width = max.X - min.X
	file.Height = max.Y - min.Y
	if file.Width < 0.01 || file.Height < 0.01 {
		result.warnf("Degenerate drawing extents (%.2f x %.2f)", file.Width, file.Height)
	}

	result.Files = append(result.Files, file)
	return result
}

// arcSweep returns the counter-clockwise sweep of an ARC in radians.
func arcSweep(a *entity.Arc) float64 {
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	return end - start
}

// lwPolylineToOutline flattens an LWPOLYLINE into points. A vertex with a
// bulge starts an arc to the following vertex.
func lwPolylineToOutline(lw *entity.LwPolyline) outline {
	n := len(lw.Vertices)
	var o outline
	for i, v := range lw.Vertices {
		p := model.Point2D{X: v[0], Y: v[1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 || (i == n-1 && !lw.Closed) {
			o = append(o, p)
			continue
		}
		next := lw.Vertices[(i+1)%n]
		arc := bulgeArcPoints(p, model.Point2D{X: next[0], Y: next[1]}, bulge, 32)
		o = append(o, arc[:len(arc)-1]...)
	}
	return o
}

// bulgeArcPoints samples the arc between p1 and p2 described by a DXF bulge,
// the tangent of a quarter of the included angle. Positive bulges run
// counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, segments int) outline {
	chord := distance(p1, p2)
	if chord < 1e-9 {
		return outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	// The center lies on the chord's left normal for counter-clockwise
	// arcs, at a negative offset once the arc exceeds a half circle.
	offset := radius - sagitta
	if bulge < 0 {
		offset = -offset
	}
	center := model.Point2D{
		X: (p1.X+p2.X)/2 - (p2.Y-p1.Y)/chord*offset,
		Y: (p1.Y+p2.Y)/2 + (p2.X-p1.X)/chord*offset,
	}

	from := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	to := math.Atan2(p2.Y-center.Y, p2.X-center.X)
	if bulge > 0 && to < from {
		to += 2 * math.Pi
	}
	if bulge < 0 && to > from {
		to -= 2 * math.Pi
	}
	return sampleArc(center, radius, from, to, segments)
}

// sampleArc returns segments+1 points from angle from to angle to.
func sampleArc(c model.Point2D, r, from, to float64, segments int) outline {
	pts := make(outline, segments+1)
	for i := range pts {
		a := from + (to-from)*float64(i)/float64(segments)
		pts[i] = model.Point2D{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, segments int) outline {
	center := model.Point2D{X: c.Center[0], Y: c.Center[1]}
	full := sampleArc(center, c.Radius, 0, 2*math.Pi, segments)
	return full[:segments]
}

// arcToPoints samples a DXF ARC, which always runs counter-clockwise.
func arcToPoints(a *entity.Arc, segments int) outline {
	center := model.Point2D{X: a.Circle.Center[0], Y: a.Circle.Center[1]}
	from := a.Angle[0] * math.Pi / 180
	return sampleArc(center, a.Circle.Radius, from, from+arcSweep(a), segments)
}

func pointsToSegments(pts outline) []segment {
	segs := make([]segment, 0, len(pts))
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

// chainSegments joins loose segments end to end into contours and reports
// whether each contour closes. Endpoints within tolerance are joined.
func chainSegments(segs []segment, tolerance float64) ([]outline, []bool) {
	used := make([]bool, len(segs))
	var outlines []outline
	var closed []bool

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := outline{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				var next model.Point2D
				switch {
				case pointsClose(tail, seg.start, tolerance):
					next = seg.end
				case pointsClose(tail, seg.end, tolerance):
					next = seg.start
				default:
					continue
				}
				chain = append(chain, next)
				used[i] = true
				extended = true
				break
			}
		}

		isClosed := len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance)
		if isClosed {
			chain = chain[:len(chain)-1]
		}
		outlines = append(outlines, chain)
		closed = append(closed, isClosed)
	}
	return outlines, closed
}

// countOpenContours chains loose segments and counts the contours that do
// not close. A laser still cuts them, but they usually signal a drawing gap.
func countOpenContours(segs []segment, tolerance float64) int {
	_, closed := chainSegments(segs, tolerance)
	open := 0
	for _, c := range closed {
		if !c {
			open++
		}
	}
	return open
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return distance(a, b) <= tolerance
}
