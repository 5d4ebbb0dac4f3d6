package assets

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/flopp/go-findfont"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// FontID identifies a face: a font file name (resolved with findfont) at a
// point size.
type FontID struct {
	Name string
	Size float64
}

func (id FontID) String() string {
	return fmt.Sprintf("%s@%gpt", id.Name, id.Size)
}

// FaceLoader opens the face for id.
type FaceLoader func(id FontID) (font.Face, error)

// Fonts binds font faces by identity. Faces are loaded once and kept in an
// LRU cache; binding the face that is already active does nothing.
//
// Fonts is not safe for concurrent use; it belongs to the render loop.
type Fonts struct {
	cache *lru.Cache[FontID, font.Face]
	load  FaceLoader
	log   *slog.Logger

	active     FontID
	activeFace font.Face
	loads      int
	binds      int
}

// NewFonts returns a binder caching up to size faces. load can be nil to
// use LoadFace. logger can be nil.
func NewFonts(size int, load FaceLoader, logger *slog.Logger) (*Fonts, error) {
	if load == nil {
		load = LoadFace
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fonts{load: load, log: logger}
	cache, err := lru.NewWithEvict(size, func(id FontID, face font.Face) {
		if face != basicfont.Face7x13 {
			face.Close()
		}
		if id == f.active {
			f.activeFace = nil
		}
		f.log.Debug("assets: font evicted", "font", id)
	})
	if err != nil {
		return nil, fmt.Errorf("assets: font cache: %w", err)
	}
	f.cache = cache
	return f, nil
}

// Preload loads ids into the cache ahead of the first frame.
func (f *Fonts) Preload(ids ...FontID) {
	for _, id := range ids {
		if _, ok := f.cache.Get(id); !ok {
			f.cache.Add(id, f.open(id))
		}
	}
}

// Bind makes id the active face and returns it.
func (f *Fonts) Bind(id FontID) font.Face {
	if f.activeFace != nil && id == f.active {
		return f.activeFace
	}
	face, ok := f.cache.Get(id)
	if !ok {
		face = f.open(id)
		f.cache.Add(id, face)
	}
	f.active, f.activeFace = id, face
	f.binds++
	return face
}

// Active returns the face bound last, or nil.
func (f *Fonts) Active() font.Face {
	return f.activeFace
}

// Loads returns the number of faces opened so far.
func (f *Fonts) Loads() int {
	return f.loads
}

// Binds returns the number of Bind calls that changed the active face.
func (f *Fonts) Binds() int {
	return f.binds
}

func (f *Fonts) open(id FontID) font.Face {
	f.loads++
	face, err := f.load(id)
	if err != nil {
		f.log.Warn("assets: font unavailable, using basic font", "font", id, "err", err)
		return basicfont.Face7x13
	}
	return face
}

// LoadFace finds id.Name on the system font paths, or uses it as a path,
// and opens it at id.Size points and 72 DPI, so one point is one pixel.
func LoadFace(id FontID) (font.Face, error) {
	path := id.Name
	if _, err := os.Stat(path); err != nil {
		path, err = findfont.Find(id.Name)
		if err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("assets: parse %s: %w", path, err)
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    id.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
