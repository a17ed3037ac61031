package tiled

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAnimationClock_Advance(t *testing.T) {
	var c AnimationClock
	c.Advance(0.25)
	if got := c.Milliseconds(); got != 250 {
		t.Errorf("Milliseconds() = %d, want 250", got)
	}
	c.Advance(0)
	c.Advance(-1)
	if got := c.Milliseconds(); got != 250 {
		t.Errorf("zero and negative deltas moved the clock to %d", got)
	}
}

func TestAnimationClock_CarriesFractions(t *testing.T) {
	var c AnimationClock
	for range 60 {
		c.Advance(1.0 / 60)
	}
	if got := c.Milliseconds(); got != 1000 {
		t.Errorf("60 ticks at 60 Hz = %d ms, want 1000", got)
	}

	c.Set(0)
	for range 4 {
		c.Advance(0.00025)
	}
	if got := c.Milliseconds(); got != 1 {
		t.Errorf("four quarter-ms ticks = %d ms, want 1", got)
	}

	c.Set(100)
	c.Advance(0.0009)
	c.Set(100)
	c.Advance(0.0002)
	if got := c.Milliseconds(); got != 100 {
		t.Errorf("Set kept a stale fraction: %d, want 100", got)
	}
}

func TestAnimationClock_WrapsToZero(t *testing.T) {
	var c AnimationClock
	c.Set(AnimationWrap - 10)
	c.Advance(0.010)
	if got := c.Milliseconds(); got != 0 {
		t.Errorf("after wrap = %d, want 0", got)
	}
	c.Set(AnimationWrap - 10)
	c.Advance(0.025)
	if got := c.Milliseconds(); got != 15 {
		t.Errorf("after wrap = %d, want 15", got)
	}
}

func TestAnimationClock_Set(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0},
		{1234, 1234},
		{AnimationWrap, 0},
		{AnimationWrap + 5, 5},
		{-1, AnimationWrap - 1},
	}
	for _, tc := range cases {
		var c AnimationClock
		c.Set(tc.in)
		if got := c.Milliseconds(); got != tc.want {
			t.Errorf("Set(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestProperty_ClockStaysInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("the clock stays within [0, AnimationWrap)", prop.ForAll(
		func(start int, dt float64) bool {
			var c AnimationClock
			c.Set(start)
			c.Advance(dt)
			ms := c.Milliseconds()
			return ms >= 0 && ms < AnimationWrap
		},
		gen.IntRange(-100000, 100000),
		gen.Float64Range(-10, 1000),
	))
	properties.TestingRun(t)
}

// animatedMap has one 3-frame animation on gid 1 cycling through gids 1, 2, 3.
func animatedMap(t *testing.T) *Map {
	t.Helper()
	ts := gridTileset("anim", 1, 3, 1, 8, 8)
	ts.Tiles = []TileDescriptor{{
		ID: 0,
		Animation: []AnimFrame{
			{TileID: 0, Duration: 100},
			{TileID: 1, Duration: 100},
			{TileID: 2, Duration: 100},
		},
	}}
	return mustNewMap(t, 8, 8, 1, 1, []*Tileset{ts}, []*Layer{tileLayer("ground", 1, 1, []uint32{1})})
}

func TestResolveGID_FrameSelection(t *testing.T) {
	m := animatedMap(t)
	cases := []struct {
		ms   int
		want uint32
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2}, // a boundary belongs to the next frame
		{150, 2},
		{200, 3},
		{299, 3},
		{300, 1},
		{450, 2},
	}
	for _, tc := range cases {
		m.SetAnimationTime(tc.ms)
		if got := m.ResolveGID(1); got != tc.want {
			t.Errorf("ms=%d: ResolveGID(1) = %d, want %d", tc.ms, got, tc.want)
		}
	}
}

func TestResolveGID_IgnoresFlagsAndStaticTiles(t *testing.T) {
	m := animatedMap(t)
	m.SetAnimationTime(150)
	if got := m.ResolveGID(1 | FlipHorizontal); got != 2 {
		t.Errorf("flagged gid resolved to %d, want 2", got)
	}
	if got := m.ResolveGID(3); got != 3 {
		t.Errorf("static gid resolved to %d, want 3", got)
	}
	if got := m.ResolveGID(99); got != 99 {
		t.Errorf("unknown gid resolved to %d, want 99", got)
	}
}

func TestResolveGID_ZeroDurationIsStatic(t *testing.T) {
	ts := gridTileset("still", 1, 2, 1, 8, 8)
	ts.Tiles = []TileDescriptor{{ID: 0, Animation: []AnimFrame{{TileID: 1, Duration: 0}}}}
	m := mustNewMap(t, 8, 8, 1, 1, []*Tileset{ts}, nil)
	m.SetAnimationTime(500)
	if got := m.ResolveGID(1); got != 1 {
		t.Errorf("zero-length animation resolved to %d, want 1", got)
	}
}

func TestMapUpdate_AdvancesClockOnly(t *testing.T) {
	m := animatedMap(t)
	m.Update(0.15)
	if got := m.AnimationTime(); got != 150 {
		t.Fatalf("AnimationTime() = %d, want 150", got)
	}
	m.Update(0)
	if got := m.AnimationTime(); got != 150 {
		t.Errorf("Update(0) changed the clock to %d", got)
	}

	dst := newRecordingTarget(8, 8)
	m.Draw(dst, 0, 0, ColorWhite)
	if len(dst.calls) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(dst.calls))
	}
	if want := m.AtlasEntry(2).Image; dst.calls[0].img != want {
		t.Error("animated cell did not draw frame 1")
	}

	var nilMap *Map
	nilMap.Update(1)
	if nilMap.AnimationTime() != 0 {
		t.Error("nil map reported a clock")
	}
}
