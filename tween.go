package tiled

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup drives the tweened fields of one layer or object. Create one via
// TweenLayerOpacity, TweenLayerOffset or TweenObjectPosition and call
// Update(dt) each frame. The group stops as soon as its map is unloaded, and
// opacity writes stay inside [0, 1] even when the easing overshoots.
//
// There is no global tween manager; callers update their groups themselves.
type TweenGroup struct {
	tracks []tweenTrack
	owner  *Map
	Done   bool
}

// tweenTrack binds one gween tween to the map field it writes.
type tweenTrack struct {
	tween *gween.Tween
	dst   *float64
	unit  bool // clamp writes to [0, 1]
}

func (tr tweenTrack) write(v float32) {
	out := float64(v)
	if tr.unit {
		out = clamp01(out)
	}
	*tr.dst = out
}

// Update advances the group by dt seconds and stores the eased values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.owner != nil && g.owner.IsUnloaded() {
		g.Done = true
		return
	}

	finished := 0
	for _, tr := range g.tracks {
		v, done := tr.tween.Update(dt)
		tr.write(v)
		if done {
			finished++
		}
	}
	g.Done = finished == len(g.tracks)
}

// tweenTarget names a field and the value it should reach.
type tweenTarget struct {
	dst *float64
	to  float64
}

func newTweenGroup(m *Map, duration float32, fn ease.TweenFunc, unit bool, targets ...tweenTarget) *TweenGroup {
	g := &TweenGroup{owner: m, tracks: make([]tweenTrack, 0, len(targets))}
	for _, t := range targets {
		g.tracks = append(g.tracks, tweenTrack{
			tween: gween.New(float32(*t.dst), float32(t.to), duration, fn),
			dst:   t.dst,
			unit:  unit,
		})
	}
	return g
}

// TweenLayerOpacity fades layer.Opacity to the given value, clamped to
// [0, 1]. Overshooting easings such as ease.OutBack saturate at the bounds.
func TweenLayerOpacity(m *Map, layer *Layer, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(m, duration, fn, true, tweenTarget{&layer.Opacity, clamp01(to)})
}

// TweenLayerOffset moves a layer's pixel offset to (toX, toY).
func TweenLayerOffset(m *Map, layer *Layer, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(m, duration, fn, false,
		tweenTarget{&layer.OffsetX, toX}, tweenTarget{&layer.OffsetY, toY})
}

// TweenObjectPosition moves an object to (toX, toY).
func TweenObjectPosition(m *Map, obj *Object, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(m, duration, fn, false,
		tweenTarget{&obj.X, toX}, tweenTarget{&obj.Y, toY})
}
