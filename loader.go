package tiled

import (
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/remeh/sizedwaitgroup"
)

// defaultDecodeWorkers bounds how many images are decoded at once.
const defaultDecodeWorkers = 4

// LoadConfig controls how a map and its resources are loaded. The zero value
// reads from the OS filesystem and tolerates missing sub-resources.
type LoadConfig struct {
	// FS, when set, is used for every file read and paths are slash
	// separated. Nil means the OS filesystem.
	FS fs.FS

	// Strict makes any failed sub-resource (tileset image, image layer,
	// external tileset) fail the whole load. By default the resource is left
	// nil, recorded in Map.LoadErrors and skipped when drawing.
	Strict bool

	// DecodeWorkers is the number of images decoded in parallel. Zero or
	// negative means defaultDecodeWorkers.
	DecodeWorkers int
}

// ResourceError describes a sub-resource of a map that failed to load.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("tiled: load %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Load reads a Tiled JSON map and everything it references from the OS
// filesystem. Relative paths resolve against the map file's directory.
func Load(path string) (*Map, error) {
	return LoadWithConfig(path, LoadConfig{})
}

// LoadFS reads a Tiled JSON map from fsys.
func LoadFS(fsys fs.FS, name string) (*Map, error) {
	return LoadWithConfig(name, LoadConfig{FS: fsys})
}

// LoadWithConfig reads a Tiled JSON map using cfg.
func LoadWithConfig(name string, cfg LoadConfig) (*Map, error) {
	src := fileSource{fsys: cfg.FS}
	data, err := src.read(name)
	if err != nil {
		return nil, fmt.Errorf("tiled: read map %s: %w", name, err)
	}
	return load(data, src.dir(name), cfg)
}

// LoadFromMemory decodes Tiled JSON map data. Referenced files are read from
// the OS filesystem relative to baseDir.
func LoadFromMemory(data []byte, baseDir string) (*Map, error) {
	return LoadFromMemoryWithConfig(data, baseDir, LoadConfig{})
}

// LoadFromMemoryWithConfig decodes Tiled JSON map data using cfg; referenced
// files resolve relative to baseDir.
func LoadFromMemoryWithConfig(data []byte, baseDir string, cfg LoadConfig) (*Map, error) {
	return load(data, baseDir, cfg)
}

func load(data []byte, baseDir string, cfg LoadConfig) (*Map, error) {
	m, err := decodeMap(data)
	if err != nil {
		return nil, err
	}
	m.dir = baseDir

	l := &loader{m: m, src: fileSource{fsys: cfg.FS}, cfg: cfg}
	if err := l.resolveTilesets(); err != nil {
		m.Unload()
		return nil, err
	}
	if err := l.loadImages(); err != nil {
		m.Unload()
		return nil, err
	}
	if err := m.finalize(); err != nil {
		m.Unload()
		return nil, err
	}

	if globalDebug {
		log.Printf("tiled: loaded %dx%d map from %q: %d tilesets, %d layers, %d load errors",
			m.Width, m.Height, baseDir, len(m.Tilesets), len(m.Layers), len(m.LoadErrors))
	}
	return m, nil
}

// loader carries the state of one load call.
type loader struct {
	m   *Map
	src fileSource
	cfg LoadConfig
}

// fail records a sub-resource failure. In strict mode it is returned and
// aborts the load.
func (l *loader) fail(p string, err error) error {
	rerr := &ResourceError{Path: p, Err: err}
	if l.cfg.Strict {
		return rerr
	}
	if globalDebug {
		log.Printf("%v", rerr)
	}
	l.m.LoadErrors = append(l.m.LoadErrors, rerr)
	return nil
}

// resolveTilesets inlines every external tileset. The external file is
// decoded into a new value and its fields are copied into the placeholder,
// which keeps its FirstGID.
func (l *loader) resolveTilesets() error {
	for _, ts := range l.m.Tilesets {
		ts.dir = l.m.dir
		if ts.Source == "" {
			continue
		}
		p := l.src.join(l.m.dir, ts.Source)
		data, err := l.src.read(p)
		if err != nil {
			if err := l.fail(p, err); err != nil {
				return err
			}
			continue
		}
		ext, err := decodeTileset(data)
		if err != nil {
			if err := l.fail(p, err); err != nil {
				return err
			}
			continue
		}
		inlineTileset(ts, ext, l.src.dir(p))
	}
	return nil
}

// inlineTileset replaces the placeholder's definition with ext's, keeping
// the placeholder's FirstGID.
func inlineTileset(ts, ext *Tileset, dir string) {
	deallocate(&ts.Image)

	ts.Name = ext.Name
	ts.Class = ext.Class
	ts.Columns = ext.Columns
	ts.TileWidth = ext.TileWidth
	ts.TileHeight = ext.TileHeight
	ts.Spacing = ext.Spacing
	ts.Margin = ext.Margin
	ts.TileCount = ext.TileCount
	ts.ImagePath = ext.ImagePath
	ts.ImageWidth = ext.ImageWidth
	ts.ImageHeight = ext.ImageHeight
	ts.TransparentColor = ext.TransparentColor
	ts.TileOffset = ext.TileOffset
	ts.Tiles = ext.Tiles
	ts.Properties = ext.Properties
	ts.Source = ""
	ts.dir = dir
}

// imageJob is one image to read and decode, and where to store it.
type imageJob struct {
	path   string
	key    *Color
	assign func(*ebiten.Image)

	decoded image.Image
	err     error
}

// loadImages decodes every referenced image on a bounded worker pool, then
// creates the ebiten images on the calling goroutine.
func (l *loader) loadImages() error {
	var jobs []*imageJob
	for _, ts := range l.m.Tilesets {
		if ts.ImagePath != "" {
			jobs = append(jobs, &imageJob{
				path:   l.src.join(ts.dir, ts.ImagePath),
				key:    ts.TransparentColor,
				assign: func(img *ebiten.Image) { ts.Image = img },
			})
		}
		for i := range ts.Tiles {
			d := &ts.Tiles[i]
			if d.ImagePath == "" {
				continue
			}
			jobs = append(jobs, &imageJob{
				path:   l.src.join(ts.dir, d.ImagePath),
				key:    ts.TransparentColor,
				assign: func(img *ebiten.Image) { d.Image = img },
			})
		}
	}
	jobs = l.layerImageJobs(jobs, l.m.Layers)
	if len(jobs) == 0 {
		return nil
	}

	workers := l.cfg.DecodeWorkers
	if workers <= 0 {
		workers = defaultDecodeWorkers
	}
	swg := sizedwaitgroup.New(workers)
	for _, job := range jobs {
		swg.Add()
		go func(job *imageJob) {
			defer swg.Done()
			data, err := l.src.read(job.path)
			if err != nil {
				job.err = err
				return
			}
			job.decoded, job.err = decodeImage(data, job.key)
		}(job)
	}
	swg.Wait()

	for _, job := range jobs {
		if job.err != nil {
			if err := l.fail(job.path, job.err); err != nil {
				return err
			}
			continue
		}
		job.assign(ebiten.NewImageFromImage(job.decoded))
	}
	return nil
}

func (l *loader) layerImageJobs(jobs []*imageJob, layers []*Layer) []*imageJob {
	for _, layer := range layers {
		switch layer.Kind {
		case LayerImage:
			if layer.ImagePath == "" {
				continue
			}
			jobs = append(jobs, &imageJob{
				path:   l.src.join(l.m.dir, layer.ImagePath),
				key:    layer.TransparentColor,
				assign: func(img *ebiten.Image) { layer.Image = img },
			})
		case LayerGroup:
			jobs = l.layerImageJobs(jobs, layer.Layers)
		}
	}
	return jobs
}

// fileSource reads files from fsys, or the OS filesystem when fsys is nil.
type fileSource struct {
	fsys fs.FS
}

func (s fileSource) read(name string) ([]byte, error) {
	if s.fsys == nil {
		return os.ReadFile(name)
	}
	return fs.ReadFile(s.fsys, name)
}

func (s fileSource) dir(name string) string {
	if s.fsys == nil {
		return filepath.Dir(name)
	}
	return path.Dir(name)
}

// join resolves a path written in a map file against dir. Map files always
// use forward slashes, but maps saved on Windows may contain backslashes.
func (s fileSource) join(dir, rel string) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if s.fsys == nil {
		if filepath.IsAbs(filepath.FromSlash(rel)) {
			return filepath.FromSlash(rel)
		}
		return filepath.Join(dir, filepath.FromSlash(rel))
	}
	return path.Join(dir, rel)
}
