package tiled

// AnimationWrap is the ceiling, in milliseconds, at which the animation clock
// wraps back to zero. Animation cycles longer than this alias: the frame
// sequence restarts early whenever the clock wraps.
const AnimationWrap = 30000

// AnimationClock is a wrapping millisecond counter shared by every animated
// tile of a map. Sub-millisecond remainders carry over between calls so the
// counter follows real elapsed time at any tick rate.
type AnimationClock struct {
	ms   int
	frac float64 // carried fraction of a millisecond, in [0, 1)
}

// Advance moves the clock forward by dt seconds. Negative or zero deltas
// leave the clock unchanged.
func (c *AnimationClock) Advance(dt float64) {
	if !(dt > 0) {
		return
	}
	total := dt*1000 + c.frac
	// The epsilon keeps sums like 60 x 1/60 s from landing a hair short.
	step := int(total + 1e-9)
	c.frac = max(total-float64(step), 0)
	if step <= 0 {
		return
	}
	c.ms = (c.ms + step%AnimationWrap) % AnimationWrap
}

// Milliseconds returns the current clock value in [0, AnimationWrap).
func (c *AnimationClock) Milliseconds() int {
	return c.ms
}

// Set moves the clock to ms, wrapped into [0, AnimationWrap).
func (c *AnimationClock) Set(ms int) {
	ms %= AnimationWrap
	if ms < 0 {
		ms += AnimationWrap
	}
	c.ms = ms
	c.frac = 0
}

// resolveFrame returns the gid of the frame active at clock time ms. The
// active frame is the first whose cumulative duration is strictly greater
// than ms modulo the cycle length, so a frame boundary belongs to the next
// frame. Entries without animation return gid unchanged.
func resolveFrame(e *AtlasEntry, gid uint32, ms int) uint32 {
	if e == nil || e.Descriptor == nil || e.Tileset == nil {
		return gid
	}
	frames := e.Descriptor.Animation
	if len(frames) == 0 || e.AnimationDuration <= 0 {
		return gid
	}

	t := ms % e.AnimationDuration
	if t < 0 {
		t += e.AnimationDuration
	}
	acc := 0
	for _, f := range frames {
		acc += f.Duration
		if acc > t {
			return e.Tileset.FirstGID + f.TileID
		}
	}
	return e.Tileset.FirstGID + frames[len(frames)-1].TileID
}
