package driftfield

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon is a closed 2D loop in artwork-local coordinates. The last vertex
// connects back to the first implicitly. Vertices may wind either way.
type Polygon []Vec2

// Triangle is one triangulated face with its precomputed area, the sampling
// weight for area-uniform mesh fills.
type Triangle struct {
	A, B, C Vec2
	Area    float64
}

// triangleArea returns the unsigned area of the triangle (a, b, c).
func triangleArea(a, b, c Vec2) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
}

// signedArea returns the signed area of the polygon (positive when counter-
// clockwise).
func signedArea(poly Polygon) float64 {
	sum := 0.0
	for i, v := range poly {
		w := poly[(i+1)%len(poly)]
		sum += v.X*w.Y - w.X*v.Y
	}
	return sum / 2
}

// pointInTriangle reports whether p lies inside or on triangle (a, b, c),
// using sign-consistent edge cross products.
func pointInTriangle(p, a, b, c Vec2) bool {
	d1 := (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
	d2 := (p.X-c.X)*(b.Y-c.Y) - (b.X-c.X)*(p.Y-c.Y)
	d3 := (p.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(p.Y-a.Y)
	hasNeg := d1 < -containsEpsilon || d2 < -containsEpsilon || d3 < -containsEpsilon
	hasPos := d1 > containsEpsilon || d2 > containsEpsilon || d3 > containsEpsilon
	return !(hasNeg && hasPos)
}

// triangulate converts a simple polygon into triangles by ear clipping.
// Degenerate (near-zero-area) ears are clipped without emitting a triangle.
// Returns an error for polygons with fewer than 3 vertices or self-
// intersecting outlines the clipper cannot reduce.
func triangulate(poly Polygon) ([]Triangle, error) {
	if len(poly) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(poly))
	}
	for _, v := range poly {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return nil, fmt.Errorf("polygon vertex has non-finite coordinate (%v, %v)", v.X, v.Y)
		}
	}

	// Work on a counter-clockwise copy so ear convexity has one sign.
	verts := make([]Vec2, len(poly))
	copy(verts, poly)
	if signedArea(poly) < 0 {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}

	tris := make([]Triangle, 0, len(verts)-2)
	guard := len(verts) * len(verts)
	for len(verts) > 3 {
		clipped := false
		for i := 0; i < len(verts); i++ {
			pi := (i + len(verts) - 1) % len(verts)
			ni := (i + 1) % len(verts)
			prev := verts[pi]
			cur := verts[i]
			next := verts[ni]

			// Convexity: cross product must be positive for a CCW ear.
			cross := (cur.X-prev.X)*(next.Y-prev.Y) - (next.X-prev.X)*(cur.Y-prev.Y)
			if cross <= 0 {
				continue
			}

			// No other vertex may sit inside the candidate ear.
			blocked := false
			for j := 0; j < len(verts); j++ {
				if j == i || j == pi || j == ni {
					continue
				}
				if pointInTriangle(verts[j], prev, cur, next) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}

			if area := triangleArea(prev, cur, next); area > 0 {
				tris = append(tris, Triangle{A: prev, B: cur, C: next, Area: area})
			}
			verts = append(verts[:i], verts[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("polygon could not be triangulated (self-intersecting outline?)")
		}
		if guard--; guard < 0 {
			return nil, fmt.Errorf("polygon triangulation did not terminate")
		}
	}
	if area := triangleArea(verts[0], verts[1], verts[2]); area > 0 {
		tris = append(tris, Triangle{A: verts[0], B: verts[1], C: verts[2], Area: area})
	}
	return tris, nil
}

// MeshOptions controls how artwork-local polygons are mapped into the field's
// 3D frame.
type MeshOptions struct {
	// Depth is the extrusion thickness on Z. Each sampled point gets a
	// uniform random offset in [−Depth/2, Depth/2].
	Depth float64
	// TargetWidth, when positive, uniformly scales the artwork so its
	// bounding-box width equals this value. Zero keeps artwork units.
	TargetWidth float64
}

// TriangleMesh fills arbitrary closed vector artwork with area-uniform
// particles. Construction triangulates every polygon and builds a cumulative
// area index, so each sample picks its triangle with one binary search
// (O(log T); a linear scan would also work for tiny meshes but is not used).
// Sampled points come out centered on the origin, Y-flipped to the Y-up 3D
// convention, and uniformly scaled.
type TriangleMesh struct {
	tris  []Triangle
	cum   []float64 // cum[i] = total area of tris[0..i]
	total float64

	center Vec2
	scale  float64
	depth  float64
}

// NewTriangleMesh triangulates the given polygons and prepares the weighted
// sampling index. Polygons with non-finite coordinates or an all-degenerate
// (zero total area) outline are configuration errors.
func NewTriangleMesh(polys []Polygon, opt MeshOptions) (*TriangleMesh, error) {
	if len(polys) == 0 {
		return nil, fmt.Errorf("mesh needs at least one polygon")
	}
	if opt.Depth < 0 || math.IsNaN(opt.Depth) || math.IsInf(opt.Depth, 0) {
		return nil, fmt.Errorf("mesh depth must be finite and non-negative, got %v", opt.Depth)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var tris []Triangle
	for i, poly := range polys {
		pt, err := triangulate(poly)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		tris = append(tris, pt...)
		for _, v := range poly {
			minX = math.Min(minX, v.X)
			minY = math.Min(minY, v.Y)
			maxX = math.Max(maxX, v.X)
			maxY = math.Max(maxY, v.Y)
		}
	}

	m := &TriangleMesh{
		tris:   tris,
		cum:    make([]float64, len(tris)),
		center: Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		scale:  1,
		depth:  opt.Depth,
	}
	for i, tri := range tris {
		m.total += tri.Area
		m.cum[i] = m.total
	}
	if m.total <= 0 {
		return nil, fmt.Errorf("mesh has zero total area")
	}
	if opt.TargetWidth > 0 {
		width := maxX - minX
		if width <= 0 {
			return nil, fmt.Errorf("mesh bounding box has zero width, cannot scale to %v", opt.TargetWidth)
		}
		m.scale = opt.TargetWidth / width
	}
	return m, nil
}

// TriangleCount returns the number of triangles in the sampling index.
func (m *TriangleMesh) TriangleCount() int {
	return len(m.tris)
}

// TotalArea returns the mesh area in output units, usable as an
// area-proportional region weight.
func (m *TriangleMesh) TotalArea() float64 {
	return m.total * m.scale * m.scale
}

// Sample picks a triangle proportional to its area, then a uniform point
// inside it via the square-root barycentric trick, then extrudes on Z.
func (m *TriangleMesh) Sample(rng *rand.Rand) r3.Vec {
	pick := rng.Float64() * m.total
	idx := sort.SearchFloat64s(m.cum, pick)
	if idx >= len(m.tris) {
		idx = len(m.tris) - 1
	}
	tri := m.tris[idx]

	s := math.Sqrt(rng.Float64())
	r2 := rng.Float64()
	x := (1-s)*tri.A.X + s*(1-r2)*tri.B.X + s*r2*tri.C.X
	y := (1-s)*tri.A.Y + s*(1-r2)*tri.B.Y + s*r2*tri.C.Y

	return r3.Vec{
		X: (x - m.center.X) * m.scale,
		Y: -(y - m.center.Y) * m.scale,
		Z: (rng.Float64() - 0.5) * m.depth,
	}
}

// Contains maps p back into artwork coordinates and tests it against every
// triangle. Linear over triangles; only tests use it.
func (m *TriangleMesh) Contains(p r3.Vec) bool {
	if math.Abs(p.Z) > m.depth/2+containsEpsilon {
		return false
	}
	local := Vec2{
		X: p.X/m.scale + m.center.X,
		Y: -p.Y/m.scale + m.center.Y,
	}
	for _, tri := range m.tris {
		if pointInTriangle(local, tri.A, tri.B, tri.C) {
			return true
		}
	}
	return false
}

// Validate reports whether the mesh was built with a usable sampling index.
func (m *TriangleMesh) Validate() error {
	if len(m.tris) == 0 || m.total <= 0 {
		return fmt.Errorf("mesh has no sampleable triangles")
	}
	return nil
}
