package tiled

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes an encoded image and keys out the transparent color
// when one is given. The result is ready for ebiten.NewImageFromImage.
func decodeImage(data []byte, key *Color) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if key != nil {
		img = keyColor(img, *key)
	}
	return img, nil
}

// keyColor returns a copy of src in which every pixel whose RGB matches key
// is fully transparent. The key's alpha is ignored.
func keyColor(src image.Image, key Color) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	k := key.NRGBA()
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] == k.R && dst.Pix[i+1] == k.G && dst.Pix[i+2] == k.B {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0, 0, 0, 0
		}
	}
	return dst
}

// GenImage renders the whole map into a new image the size of the map,
// filled with the map's background color first. Returns nil for a nil,
// unloaded or empty map. The caller owns the image.
func (m *Map) GenImage(tint Color) *ebiten.Image {
	if m == nil || m.unloaded || m.PixelWidth() <= 0 || m.PixelHeight() <= 0 {
		return nil
	}
	img := ebiten.NewImage(m.PixelWidth(), m.PixelHeight())
	if m.BackgroundColor.A > 0 {
		img.Fill(m.BackgroundColor)
	}
	m.Draw(img, 0, 0, tint)
	return img
}

// GenLayerImage renders a single layer subtree into a new transparent image
// the size of the map. The caller owns the image.
func (m *Map) GenLayerImage(layer *Layer, tint Color) *ebiten.Image {
	if m == nil || m.unloaded || layer == nil || m.PixelWidth() <= 0 || m.PixelHeight() <= 0 {
		return nil
	}
	img := ebiten.NewImage(m.PixelWidth(), m.PixelHeight())
	m.DrawLayer(img, layer, 0, 0, tint)
	return img
}

// SaveImage writes img to path as a PNG. It reads pixels back from the GPU,
// so it must be called while the game loop is running.
func SaveImage(img *ebiten.Image, path string) error {
	if img == nil {
		return fmt.Errorf("tiled: save %s: nil image", path)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	img.ReadPixels(pixels)
	return writePNG(path, unpremultiply(pixels, w, h))
}

// unpremultiply converts premultiplied RGBA bytes to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(out.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		out.Pix[i] = r
		out.Pix[i+1] = g
		out.Pix[i+2] = b
		out.Pix[i+3] = a
	}
	return out
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tiled: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("tiled: encode %s: %w", path, err)
	}
	return f.Close()
}
