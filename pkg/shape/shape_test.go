package shape

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func scenarioOptions(t *testing.T) Options {
	t.Helper()
	o := DefaultOptions()
	require.NoError(t, o.SetAll(map[string]any{
		"length":              6,
		"thickness":           0.2,
		"tipPercentage":       0.1,
		"baseFlarePercentage": 0.8,
		"baseFalloff":         5,
		"steps":               15,
	}))
	return o
}

func ringCentre(m *kernel.Mesh, ring, loop int) v3.Vec {
	var c v3.Vec
	for j := 0; j < loop; j++ {
		c = c.Add(m.Points[ring*loop+j])
	}
	return c.MulScalar(1 / float64(loop))
}

// ---------------------------------------------------------------------------
// Simple
// ---------------------------------------------------------------------------

func TestSimpleScenario(t *testing.T) {
	o := scenarioOptions(t)
	src := noise.New(7)

	path := SimplePath(o, src)
	require.Len(t, path, 31, "16 shaft points plus 15 tip points")
	assert.Equal(t, v3.Vec{}, path[0])
	assert.Equal(t, 0.0, path[1].X, "base rings stay on the axis")
	assert.Equal(t, 0.0, path[1].Z)
	assert.InDelta(t, 5.4, path[15].Y, 1e-9)
	assert.InDelta(t, 0.6, path[30].Sub(path[15]).Length(), 1e-9)

	r := SimpleRadius(o)
	assert.Greater(t, r(0), 0.2, "flare present at the base")
	assert.InDelta(t, 0.2, r(15), 0.005, "flare decays to thickness at the shaft end")
	for i := 2; i < 15; i++ {
		assert.GreaterOrEqual(t, r(i), r(i+1), "flare must not grow along the shaft (ring %d)", i)
	}
	assert.Less(t, math.Abs(r(15)-r(16)), 0.01, "no jump at the shaft/tip junction")
	assert.InDelta(t, 0.0, r(30), 1e-12, "tip closes")

	part, err := Simple(o, src)
	require.NoError(t, err)
	require.NoError(t, part.Mesh.Validate())
	assert.Equal(t, 31*o.LoopLength, part.Mesh.VertexCount())
	assert.Equal(t, 2*o.LoopLength*30, part.Mesh.TriangleCount())
	assert.Empty(t, part.Children)
	assert.Equal(t, "simple rhinophore", part.Name)
}

func TestSimpleBaseBoost(t *testing.T) {
	o := scenarioOptions(t)
	r := SimpleRadius(o)
	// Rings 0 and 1 carry the boosted flare, ring 2 the plain one.
	plain := o.Thickness * (1 + o.BaseFlarePercentage)
	assert.InDelta(t, o.Thickness*(1+baseBoost*o.BaseFlarePercentage), r(0), 1e-12)
	assert.Greater(t, r(1), r(2))
	assert.Less(t, r(2), plain)
}

func TestSimpleZeroThickness(t *testing.T) {
	o := scenarioOptions(t)
	o.Thickness = 0
	part, err := Simple(o, noise.New(1))
	require.NoError(t, err)
	require.NoError(t, part.Mesh.Validate())
	for _, p := range part.Mesh.Points {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))
	}
}

// ---------------------------------------------------------------------------
// Ribbed
// ---------------------------------------------------------------------------

func TestRibbed(t *testing.T) {
	o := DefaultOptions()
	part, err := Ribbed(o, noise.New(3))
	require.NoError(t, err)
	require.NoError(t, part.Mesh.Validate())

	rings := 1 + o.RibIntervals*(o.RibIntervals-1)/2
	assert.Equal(t, rings*o.LoopLength, part.Mesh.VertexCount())
	assert.Equal(t, "ribbed rhinophore", part.Name)

	// The curved path stays in the XY plane.
	for _, p := range RibbedPath(o) {
		assert.InDelta(t, 0.0, p.Z, 1e-12)
	}
}

func TestRibbedWithoutTensionIsStraight(t *testing.T) {
	o := DefaultOptions()
	o.Tension = 0
	path := RibbedPath(o)
	end := path[len(path)-1]
	assert.InDelta(t, 0.0, end.X, 1e-9)
	assert.InDelta(t, o.Length, end.Y, 1e-9)
}

func TestRibbedRadiusTapers(t *testing.T) {
	o := DefaultOptions()
	o.Bumpiness = 0
	n := len(RibbedPath(o))
	r := RibbedRadius(o, n, noise.New(1))
	assert.InDelta(t, o.Thickness, r(0), 1e-12)
	assert.Less(t, r(n-1), 0.05*o.Thickness)
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, r(i), r(i-1))
	}
}

// ---------------------------------------------------------------------------
// Lamellate
// ---------------------------------------------------------------------------

func TestLamellateTipPlacement(t *testing.T) {
	o := scenarioOptions(t)
	part, err := Lamellate(o, noise.New(1))
	require.NoError(t, err)
	require.Len(t, part.Children, 1)

	shaftLength := (1 - o.TipPercentage) * o.Length
	tipLength := o.Length * o.TipPercentage
	tip := part.Children[0]
	assert.InDelta(t, shaftLength+tipLength/tipLift, tip.Offset.Y, 1e-12)
	assert.Equal(t, "lamellate tip", tip.Name)
	assert.Equal(t, (o.Steps+1)*o.LoopLength, part.Mesh.VertexCount())
}

func TestLamellateTip(t *testing.T) {
	m, err := LamellateTip(0.6, 0.2, 20)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, tipRings*20, m.VertexCount())
	assert.Equal(t, 2*20*(tipRings-1), m.TriangleCount())

	// Rings rise from -tipLength/2 to +tipLength/2.
	assert.InDelta(t, -0.3, m.Points[0].Y, 1e-12)
	assert.InDelta(t, 0.3, m.Points[len(m.Points)-1].Y, 1e-12)

	// The top ring is closed, the widest ring is near the middle.
	top := (tipRings - 1) * 20
	for j := 0; j < 20; j++ {
		p := m.Points[top+j]
		assert.InDelta(t, 0.0, math.Hypot(p.X, p.Z), 1e-12)
	}
	mid := m.Points[5*20]
	assert.InDelta(t, 0.4, mid.X, 1e-9)

	_, err = LamellateTip(0.6, 0.2, 2)
	assert.ErrorIs(t, err, kernel.ErrInvalidArgument)
}

func TestLamellateTipFlattened(t *testing.T) {
	m, err := LamellateTip(1, 1, 20)
	require.NoError(t, err)
	for _, p := range m.Points {
		assert.LessOrEqual(t, p.Z, tipFlatten)
	}
}

func TestLamellateCuff(t *testing.T) {
	for _, mode := range []string{CuffLathe, CuffSDF} {
		t.Run(mode, func(t *testing.T) {
			o := scenarioOptions(t)
			o.Cuff = true
			o.CuffMode = mode
			o.CuffCells = 24

			part, err := Lamellate(o, noise.New(1))
			require.NoError(t, err)
			require.Len(t, part.Children, 2)

			cuff := part.Children[1]
			assert.Equal(t, v3.Vec{}, cuff.Offset)
			require.NoError(t, cuff.Mesh.Validate())
			bb := cuff.Mesh.BoundingBox()
			size := 3 * o.Thickness
			assert.InDelta(t, size, bb.Max.Y-bb.Min.Y, 0.05)
			assert.InDelta(t, size, bb.Max.X-bb.Min.X, 0.05)
		})
	}
}

// ---------------------------------------------------------------------------
// Pulpit
// ---------------------------------------------------------------------------

func TestPulpitCentralShaft(t *testing.T) {
	t.Run("without shaft", func(t *testing.T) {
		o := DefaultOptions()
		o.CentralShaft = false
		part, err := Pulpit(o, noise.New(1))
		require.NoError(t, err)
		assert.Empty(t, part.Children)
		assert.Equal(t, 1, part.Count())
	})
	t.Run("with shaft", func(t *testing.T) {
		o := DefaultOptions()
		o.CentralShaft = true
		part, err := Pulpit(o, noise.New(1))
		require.NoError(t, err)
		require.Len(t, part.Children, 1)

		child := part.Children[0]
		assert.Equal(t, v3.Vec{}, child.Offset)
		assert.Equal(t, "simple rhinophore", child.Name)
		root := ringCentre(child.Mesh, 0, o.LoopLength)
		assert.InDelta(t, 0.0, root.Length(), 1e-9, "shaft root sits at the pulpit origin")
	})
}

func TestPulpitHollow(t *testing.T) {
	o := DefaultOptions()
	part, err := Pulpit(o, noise.New(2))
	require.NoError(t, err)

	m := part.Mesh
	require.NoError(t, m.Validate())
	half := (o.PulpitSteps + 1) * o.PulpitLoopLength
	assert.Equal(t, 2*half, m.VertexCount())
	assert.Equal(t, 4*o.PulpitLoopLength*o.PulpitSteps+2*o.PulpitLoopLength, m.TriangleCount())

	h := PulpitHollow(o)
	assert.InDelta(t, o.Length*o.PulpitLengthPercentage, h.Height, 1e-12)
	assert.InDelta(t, o.PulpitThickness*o.BaseRadiusPercentage, h.BottomRadius, 1e-12)
	assert.Equal(t, o.WallThickness, h.Wall)
}

// ---------------------------------------------------------------------------
// Determinism
// ---------------------------------------------------------------------------

func TestGenerateIdempotent(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			o := DefaultOptions()
			src := noise.New(42)
			a, err := Generate(kind, o, src)
			require.NoError(t, err)
			b, err := Generate(kind, o, src)
			require.NoError(t, err)
			c, err := Generate(kind, o, noise.New(42))
			require.NoError(t, err)

			assert.Equal(t, a.Mesh.Points, b.Mesh.Points)
			assert.Equal(t, a.Mesh.Faces, b.Mesh.Faces)
			assert.Equal(t, a.Mesh.Points, c.Mesh.Points)
			assert.Equal(t, a.Count(), c.Count())
		})
	}
}

func TestSeedChangesShape(t *testing.T) {
	o := DefaultOptions()
	a, err := Simple(o, noise.New(1))
	require.NoError(t, err)
	b, err := Simple(o, noise.New(2))
	require.NoError(t, err)
	assert.NotEqual(t, a.Mesh.Points, b.Mesh.Points)
}

func TestConcurrentGeneration(t *testing.T) {
	o := DefaultOptions()
	src := noise.New(5)
	want, err := Pulpit(o, src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*kernel.Part, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Pulpit(o, src)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		require.NotNil(t, got)
		assert.Equal(t, want.Mesh.Points, got.Mesh.Points)
	}
}

// ---------------------------------------------------------------------------
// Registry and requests
// ---------------------------------------------------------------------------

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindLamellate, KindPulpit, KindRibbed, KindSimple}, Kinds())

	k, err := ParseKind("  Pulpit ")
	require.NoError(t, err)
	assert.Equal(t, KindPulpit, k)

	_, err = ParseKind("octopus")
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Generate("octopus", DefaultOptions(), noise.New(1))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRequestBuild(t *testing.T) {
	r := NewRequest(KindSimple)
	r.Name = "left horn"
	r.Offset = v3.Vec{X: -1}

	part, err := r.Build()
	require.NoError(t, err)
	assert.Equal(t, "left horn", part.Name)
	assert.Equal(t, v3.Vec{X: -1}, part.Offset)

	again, err := r.Build()
	require.NoError(t, err)
	assert.Equal(t, part.Mesh.Points, again.Mesh.Points)
}

func TestOversizedOptionsFailWithoutPanicking(t *testing.T) {
	o := DefaultOptions()
	o.TipLoopLength = 1 << 62
	_, err := Lamellate(o, noise.New(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	_, err = LamellateTip(1, 0.2, 1<<62)
	assert.True(t, errors.Is(err, kernel.ErrInvalidArgument))

	o = DefaultOptions()
	o.PulpitLoopLength = 1 << 61
	_, err = Pulpit(o, noise.New(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestGeneratorsRejectInvalidOptions(t *testing.T) {
	o := DefaultOptions()
	o.LoopLength = 2
	_, err := Simple(o, noise.New(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
	assert.True(t, errors.Is(err, kernel.ErrInvalidArgument))
}
