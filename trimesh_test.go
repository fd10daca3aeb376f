package driftfield

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestTriangulateSquare(t *testing.T) {
	square := Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris, err := triangulate(square)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("triangle count = %d, want 2", len(tris))
	}
	total := 0.0
	for _, tri := range tris {
		total += tri.Area
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("total area = %v, want 1", total)
	}
}

func TestTriangulateConcave(t *testing.T) {
	// L-shape: 6 vertices, one reflex corner. Ear clipping must produce
	// V-2 = 4 triangles covering area 3.
	l := Polygon{{0, 0}, {2, 0}, {2, 1}, {1, 1}, {1, 2}, {0, 2}}
	tris, err := triangulate(l)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	if len(tris) != 4 {
		t.Fatalf("triangle count = %d, want 4", len(tris))
	}
	total := 0.0
	for _, tri := range tris {
		total += tri.Area
	}
	if math.Abs(total-3) > 1e-9 {
		t.Errorf("total area = %v, want 3", total)
	}
}

func TestTriangulateClockwiseInput(t *testing.T) {
	// Winding must not matter.
	cw := Polygon{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	tris, err := triangulate(cw)
	if err != nil {
		t.Fatalf("triangulate: %v", err)
	}
	if len(tris) != 2 {
		t.Errorf("triangle count = %d, want 2", len(tris))
	}
}

func TestTriangulateRejectsBadInput(t *testing.T) {
	if _, err := triangulate(Polygon{{0, 0}, {1, 1}}); err == nil {
		t.Error("2-vertex polygon: want error")
	}
	if _, err := triangulate(Polygon{{0, 0}, {math.NaN(), 1}, {1, 0}}); err == nil {
		t.Error("NaN coordinate: want error")
	}
}

func TestMeshRejectsZeroArea(t *testing.T) {
	// Collinear outline: every candidate triangle is degenerate.
	flat := Polygon{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	if _, err := NewTriangleMesh([]Polygon{flat}, MeshOptions{}); err == nil {
		t.Error("zero-area mesh: want error")
	}
}

func TestMeshAreaWeightedSplit(t *testing.T) {
	// Two triangles with a 3:1 area ratio, well separated on X. Over 4000
	// samples the empirical split must converge to 3000:1000 within ±5%.
	// big has area 3 with x in [0, 3]; small has area 1 with x in [10, 11].
	big := Polygon{{0, 0}, {3, 0}, {0, 2}}
	small := Polygon{{10, 0}, {11, 0}, {10, 2}}
	m, err := NewTriangleMesh([]Polygon{big, small}, MeshOptions{})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}

	const n = 4000
	rng := testRNG(9)
	inSmall := make([]float64, n)
	for i := 0; i < n; i++ {
		// Output is centered on the bbox midpoint (x=5.5), so the small
		// triangle's samples land at positive X.
		if m.Sample(rng).X > 0 {
			inSmall[i] = 1
		}
	}
	frac := stat.Mean(inSmall, nil)
	if math.Abs(frac-0.25) > 0.05 {
		t.Errorf("small-triangle fraction = %v, want 0.25 ± 0.05", frac)
	}
}

func TestMeshSamplesContained(t *testing.T) {
	star := Polygon{{0, 0}, {4, 1}, {8, 0}, {7, 4}, {8, 8}, {4, 7}, {0, 8}, {1, 4}}
	m, err := NewTriangleMesh([]Polygon{star}, MeshOptions{Depth: 2})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	rng := testRNG(10)
	for i := 0; i < 2000; i++ {
		p := m.Sample(rng)
		if !m.Contains(p) {
			t.Fatalf("sample %d not contained: %+v", i, p)
		}
		if math.Abs(p.Z) > 1+1e-6 {
			t.Fatalf("sample %d depth %v exceeds ±1", i, p.Z)
		}
	}
}

func TestMeshOutputCenteredAndFlipped(t *testing.T) {
	// Artwork occupies x in [0, 4], y in [0, 2]; the output frame must be
	// centered on the origin and Y-flipped to Y-up.
	rect := Polygon{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	m, err := NewTriangleMesh([]Polygon{rect}, MeshOptions{})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	rng := testRNG(11)
	for i := 0; i < 1000; i++ {
		p := m.Sample(rng)
		if p.X < -2-1e-9 || p.X > 2+1e-9 {
			t.Fatalf("sample %d x = %v, want within [-2, 2]", i, p.X)
		}
		if p.Y < -1-1e-9 || p.Y > 1+1e-9 {
			t.Fatalf("sample %d y = %v, want within [-1, 1]", i, p.Y)
		}
	}

	// A triangle whose mass sits at artwork-low y (top of the picture in
	// Y-down artwork space) must come out with positive mean Y.
	tri := Polygon{{0, 0}, {2, 0}, {1, 3}}
	m2, err := NewTriangleMesh([]Polygon{tri}, MeshOptions{})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	sum := 0.0
	for i := 0; i < 2000; i++ {
		sum += m2.Sample(rng).Y
	}
	mean := sum / 2000
	// Centroid y=1, bbox center y=1.5, flipped mean = +0.5.
	if math.Abs(mean-0.5) > 0.1 {
		t.Errorf("flipped mean Y = %v, want ≈ 0.5", mean)
	}
}

func TestMeshTargetWidth(t *testing.T) {
	rect := Polygon{{0, 0}, {10, 0}, {10, 4}, {0, 4}}
	m, err := NewTriangleMesh([]Polygon{rect}, MeshOptions{TargetWidth: 40})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	rng := testRNG(12)
	maxX := 0.0
	for i := 0; i < 3000; i++ {
		p := m.Sample(rng)
		maxX = math.Max(maxX, math.Abs(p.X))
	}
	if maxX > 20+1e-9 {
		t.Errorf("max |x| = %v, want <= 20 after scaling", maxX)
	}
	if maxX < 18 {
		t.Errorf("max |x| = %v, suspiciously far from the scaled half width 20", maxX)
	}
	want := 40.0 * 16.0 // area 40 scaled by (4x)^2
	if math.Abs(m.TotalArea()-want) > 1e-6 {
		t.Errorf("TotalArea = %v, want %v", m.TotalArea(), want)
	}
}

func TestMeshTriangleCount(t *testing.T) {
	hex := Polygon{{2, 0}, {4, 1}, {4, 3}, {2, 4}, {0, 3}, {0, 1}}
	m, err := NewTriangleMesh([]Polygon{hex}, MeshOptions{})
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	if got := m.TriangleCount(); got != len(hex)-2 {
		t.Errorf("TriangleCount = %d, want %d", got, len(hex)-2)
	}
}
