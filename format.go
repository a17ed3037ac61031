package tiled

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
)

// Decoding errors.
var (
	ErrInvalidMap          = errors.New("tiled: invalid map")
	ErrInfiniteMap         = errors.New("tiled: infinite maps are not supported")
	ErrUnsupportedEncoding = errors.New("tiled: unsupported layer encoding")
	ErrUnsupportedFormat   = errors.New("tiled: unsupported file format")
)

// --- JSON structure types ---

type jsonProperty struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	PropertyType string          `json:"propertytype"`
	Value        json.RawMessage `json:"value"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonObject struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Class      string         `json:"class"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Rotation   float64        `json:"rotation"`
	GID        uint32         `json:"gid"`
	Visible    *bool          `json:"visible"`
	Ellipse    bool           `json:"ellipse"`
	Point      bool           `json:"point"`
	Polygon    []jsonPoint    `json:"polygon"`
	Polyline   []jsonPoint    `json:"polyline"`
	Properties []jsonProperty `json:"properties"`
}

type jsonLayer struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Class            string          `json:"class"`
	Visible          *bool           `json:"visible"`
	Opacity          *float64        `json:"opacity"`
	OffsetX          float64         `json:"offsetx"`
	OffsetY          float64         `json:"offsety"`
	TintColor        string          `json:"tintcolor"`
	Properties       []jsonProperty  `json:"properties"`
	Width            int             `json:"width"`
	Height           int             `json:"height"`
	Data             json.RawMessage `json:"data"`
	Chunks           json.RawMessage `json:"chunks"`
	Encoding         string          `json:"encoding"`
	Compression      string          `json:"compression"`
	Objects          []jsonObject    `json:"objects"`
	DrawOrder        string          `json:"draworder"`
	Image            string          `json:"image"`
	TransparentColor string          `json:"transparentcolor"`
	RepeatX          bool            `json:"repeatx"`
	RepeatY          bool            `json:"repeaty"`
	Layers           []jsonLayer     `json:"layers"`
}

type jsonFrame struct {
	TileID   uint32 `json:"tileid"`
	Duration int    `json:"duration"`
}

type jsonTile struct {
	ID          uint32         `json:"id"`
	Type        string         `json:"type"`
	Class       string         `json:"class"`
	Probability float64        `json:"probability"`
	Animation   []jsonFrame    `json:"animation"`
	Properties  []jsonProperty `json:"properties"`
	Image       string         `json:"image"`
	ImageWidth  int            `json:"imagewidth"`
	ImageHeight int            `json:"imageheight"`
	ObjectGroup *jsonLayer     `json:"objectgroup"`
}

type jsonTileset struct {
	FirstGID         uint32         `json:"firstgid"`
	Source           string         `json:"source"`
	Name             string         `json:"name"`
	Class            string         `json:"class"`
	Columns          int            `json:"columns"`
	TileWidth        int            `json:"tilewidth"`
	TileHeight       int            `json:"tileheight"`
	Spacing          int            `json:"spacing"`
	Margin           int            `json:"margin"`
	TileCount        int            `json:"tilecount"`
	Image            string         `json:"image"`
	ImageWidth       int            `json:"imagewidth"`
	ImageHeight      int            `json:"imageheight"`
	TransparentColor string         `json:"transparentcolor"`
	TileOffset       *jsonPoint     `json:"tileoffset"`
	Tiles            []jsonTile     `json:"tiles"`
	Properties       []jsonProperty `json:"properties"`
}

type jsonMap struct {
	Type            string          `json:"type"`
	Version         json.RawMessage `json:"version"`
	TiledVersion    string          `json:"tiledversion"`
	Orientation     string          `json:"orientation"`
	RenderOrder     string          `json:"renderorder"`
	Class           string          `json:"class"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	TileWidth       int             `json:"tilewidth"`
	TileHeight      int             `json:"tileheight"`
	Infinite        bool            `json:"infinite"`
	BackgroundColor string          `json:"backgroundcolor"`
	Properties      []jsonProperty  `json:"properties"`
	Tilesets        []jsonTileset   `json:"tilesets"`
	Layers          []jsonLayer     `json:"layers"`
}

// decodeMap parses Tiled JSON map data into a Map. External tilesets are left
// as placeholders with Source set; no files are read.
func decodeMap(data []byte) (*Map, error) {
	var jm jsonMap
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("tiled: failed to parse map JSON: %w", err)
	}
	if jm.Type != "" && jm.Type != "map" {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidMap, jm.Type)
	}
	if jm.Infinite {
		return nil, ErrInfiniteMap
	}
	if jm.TileWidth <= 0 || jm.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidMap, jm.TileWidth, jm.TileHeight)
	}

	m := &Map{
		TileWidth:    jm.TileWidth,
		TileHeight:   jm.TileHeight,
		Width:        jm.Width,
		Height:       jm.Height,
		Orientation:  jm.Orientation,
		RenderOrder:  jm.RenderOrder,
		Class:        jm.Class,
		Version:      strings.Trim(string(jm.Version), `"`),
		TiledVersion: jm.TiledVersion,
	}
	if jm.BackgroundColor != "" {
		c, err := ParseColor(jm.BackgroundColor)
		if err != nil {
			return nil, err
		}
		m.BackgroundColor = c
	}

	var err error
	if m.Properties, err = convertProperties(jm.Properties); err != nil {
		return nil, err
	}
	for i := range jm.Tilesets {
		ts, err := convertTileset(&jm.Tilesets[i])
		if err != nil {
			return nil, err
		}
		m.Tilesets = append(m.Tilesets, ts)
	}
	if m.Layers, err = convertLayers(jm.Layers); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeTileset parses an external tileset file. JSON (.tsj/.json) only.
func decodeTileset(data []byte) (*Tileset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return nil, fmt.Errorf("%w: XML tileset", ErrUnsupportedFormat)
	}
	var jt jsonTileset
	if err := json.Unmarshal(trimmed, &jt); err != nil {
		return nil, fmt.Errorf("tiled: failed to parse tileset JSON: %w", err)
	}
	return convertTileset(&jt)
}

func convertTileset(jt *jsonTileset) (*Tileset, error) {
	ts := &Tileset{
		FirstGID:    jt.FirstGID,
		Source:      jt.Source,
		Name:        jt.Name,
		Class:       jt.Class,
		Columns:     jt.Columns,
		TileWidth:   jt.TileWidth,
		TileHeight:  jt.TileHeight,
		Spacing:     jt.Spacing,
		Margin:      jt.Margin,
		TileCount:   jt.TileCount,
		ImagePath:   jt.Image,
		ImageWidth:  jt.ImageWidth,
		ImageHeight: jt.ImageHeight,
	}
	if jt.TileOffset != nil {
		ts.TileOffset = Vec2{X: jt.TileOffset.X, Y: jt.TileOffset.Y}
	}
	if jt.TransparentColor != "" {
		c, err := ParseColor(jt.TransparentColor)
		if err != nil {
			return nil, err
		}
		ts.TransparentColor = &c
	}

	var err error
	if ts.Properties, err = convertProperties(jt.Properties); err != nil {
		return nil, err
	}
	ts.Tiles = make([]TileDescriptor, 0, len(jt.Tiles))
	for i := range jt.Tiles {
		d, err := convertTile(&jt.Tiles[i])
		if err != nil {
			return nil, fmt.Errorf("tiled: tileset %q tile %d: %w", ts.Name, jt.Tiles[i].ID, err)
		}
		ts.Tiles = append(ts.Tiles, d)
	}

	// Collections may leave gaps in tile ids; cover the highest one.
	if ts.IsCollection() {
		for i := range ts.Tiles {
			ts.TileCount = max(ts.TileCount, int(ts.Tiles[i].ID)+1)
		}
	}
	return ts, nil
}

func convertTile(jt *jsonTile) (TileDescriptor, error) {
	d := TileDescriptor{
		ID:          jt.ID,
		Class:       firstNonEmpty(jt.Class, jt.Type),
		Probability: jt.Probability,
		ImagePath:   jt.Image,
		ImageWidth:  jt.ImageWidth,
		ImageHeight: jt.ImageHeight,
	}
	for _, f := range jt.Animation {
		d.Animation = append(d.Animation, AnimFrame{TileID: f.TileID, Duration: max(f.Duration, 0)})
	}

	var err error
	if d.Properties, err = convertProperties(jt.Properties); err != nil {
		return d, err
	}
	if jt.ObjectGroup != nil {
		if d.Collision, err = convertLayer(jt.ObjectGroup); err != nil {
			return d, err
		}
		d.Collision.Kind = LayerObject
	}
	return d, nil
}

func convertLayers(jls []jsonLayer) ([]*Layer, error) {
	layers := make([]*Layer, 0, len(jls))
	for i := range jls {
		l, err := convertLayer(&jls[i])
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, nil
}

func convertLayer(jl *jsonLayer) (*Layer, error) {
	l := &Layer{
		Kind:      layerKindFromString(jl.Type),
		ID:        jl.ID,
		Name:      jl.Name,
		Class:     jl.Class,
		Visible:   jl.Visible == nil || *jl.Visible,
		Opacity:   1,
		OffsetX:   jl.OffsetX,
		OffsetY:   jl.OffsetY,
		Width:     jl.Width,
		Height:    jl.Height,
		DrawOrder: jl.DrawOrder,
		ImagePath: jl.Image,
		RepeatX:   jl.RepeatX,
		RepeatY:   jl.RepeatY,
	}
	if jl.Opacity != nil {
		l.Opacity = clamp01(*jl.Opacity)
	}
	if jl.TintColor != "" {
		c, err := ParseColor(jl.TintColor)
		if err != nil {
			return nil, err
		}
		l.TintColor = &c
	}
	if jl.TransparentColor != "" {
		c, err := ParseColor(jl.TransparentColor)
		if err != nil {
			return nil, err
		}
		l.TransparentColor = &c
	}

	var err error
	if l.Properties, err = convertProperties(jl.Properties); err != nil {
		return nil, err
	}

	switch l.Kind {
	case LayerTile:
		if len(jl.Chunks) > 0 && string(jl.Chunks) != "null" {
			return nil, fmt.Errorf("%w: layer %q has chunks", ErrInfiniteMap, l.Name)
		}
		if l.Data, err = decodeLayerData(jl.Data, jl.Encoding, jl.Compression, layerCells(l.Width, l.Height)); err != nil {
			return nil, fmt.Errorf("tiled: layer %q: %w", l.Name, err)
		}
		if want := l.Width * l.Height; len(l.Data) != want {
			return nil, fmt.Errorf("%w: layer %q has %d tiles, want %d",
				ErrInvalidMap, l.Name, len(l.Data), want)
		}
	case LayerObject:
		l.Objects = make([]*Object, 0, len(jl.Objects))
		for i := range jl.Objects {
			o, err := convertObject(&jl.Objects[i])
			if err != nil {
				return nil, err
			}
			l.Objects = append(l.Objects, o)
		}
	case LayerGroup:
		if l.Layers, err = convertLayers(jl.Layers); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func convertObject(jo *jsonObject) (*Object, error) {
	o := &Object{
		ID:       jo.ID,
		Name:     jo.Name,
		Class:    firstNonEmpty(jo.Class, jo.Type),
		X:        jo.X,
		Y:        jo.Y,
		Width:    jo.Width,
		Height:   jo.Height,
		Rotation: jo.Rotation,
		GID:      jo.GID,
		Visible:  jo.Visible == nil || *jo.Visible,
		Ellipse:  jo.Ellipse,
		Point:    jo.Point,
		Polygon:  convertPoints(jo.Polygon),
		Polyline: convertPoints(jo.Polyline),
	}
	var err error
	if o.Properties, err = convertProperties(jo.Properties); err != nil {
		return nil, fmt.Errorf("tiled: object %d: %w", jo.ID, err)
	}
	return o, nil
}

func convertPoints(pts []jsonPoint) []Vec2 {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = Vec2{X: p.X, Y: p.Y}
	}
	return out
}

// layerCells returns width*height, or -1 when the product is negative or
// too large to address as bytes of gid data.
func layerCells(width, height int) int64 {
	if width < 0 || height < 0 {
		return -1
	}
	if height != 0 && int64(width) > math.MaxInt64/4/int64(height) {
		return -1
	}
	return int64(width) * int64(height)
}

// decodeLayerData decodes tile layer data: a JSON array of gids, or a
// base64 string of little-endian uint32s, optionally zlib or gzip compressed.
// Compressed data inflates to at most cells gids.
func decodeLayerData(raw json.RawMessage, encoding, compression string, cells int64) ([]uint32, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch encoding {
	case "", "csv":
		var gids []uint32
		if err := json.Unmarshal(raw, &gids); err != nil {
			return nil, fmt.Errorf("failed to parse tile data: %w", err)
		}
		return gids, nil
	case "base64":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse base64 tile data: %w", err)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 tile data: %w", err)
	}

	var r io.ReadCloser
	switch compression {
	case "":
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(b))
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedEncoding, compression)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s tile data: %w", compression, err)
	}
	if r != nil {
		if cells < 0 {
			r.Close()
			return nil, fmt.Errorf("%w: layer size out of range", ErrInvalidMap)
		}
		limit := cells * 4
		b, err = io.ReadAll(io.LimitReader(r, limit+1))
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to inflate %s tile data: %w", compression, err)
		}
		if int64(len(b)) > limit {
			return nil, fmt.Errorf("%w: %s tile data inflates past %d tiles",
				ErrInvalidMap, compression, cells)
		}
	}

	if len(b)%4 != 0 {
		return nil, fmt.Errorf("tile data length %d is not a multiple of 4", len(b))
	}
	gids := make([]uint32, len(b)/4)
	for i := range gids {
		gids[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return gids, nil
}

func convertProperties(jps []jsonProperty) (Properties, error) {
	if len(jps) == 0 {
		return nil, nil
	}
	props := make(Properties, 0, len(jps))
	for _, jp := range jps {
		p := Property{
			Name:         jp.Name,
			Type:         propertyTypeFromString(jp.Type),
			PropertyType: jp.PropertyType,
		}
		v, err := convertPropertyValue(p.Type, jp.Value)
		if err != nil {
			return nil, fmt.Errorf("tiled: property %q: %w", jp.Name, err)
		}
		p.Value = v
		props = append(props, p)
	}
	return props, nil
}

func convertPropertyValue(t PropertyType, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case PropertyInt, PropertyObject:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		return int(f), nil
	case PropertyFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err
	case PropertyBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case PropertyColor:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return ColorTransparent, nil
		}
		return ParseColor(s)
	case PropertyClass:
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, err
		}
		return convertClassMembers(members)
	default:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
}

// convertClassMembers infers member types from their JSON values; class
// values do not carry per-member type names.
func convertClassMembers(members map[string]json.RawMessage) (Properties, error) {
	props := make(Properties, 0, len(members))
	for _, name := range slices.Sorted(maps.Keys(members)) {
		raw := members[name]
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		p := Property{Name: name}
		switch x := v.(type) {
		case bool:
			p.Type, p.Value = PropertyBool, x
		case float64:
			p.Type, p.Value = PropertyFloat, x
		case string:
			p.Type, p.Value = PropertyString, x
		case map[string]any:
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err != nil {
				return nil, err
			}
			sub, err := convertClassMembers(nested)
			if err != nil {
				return nil, err
			}
			p.Type, p.Value = PropertyClass, sub
		default:
			p.Type = PropertyNone
		}
		props = append(props, p)
	}
	return props, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
