package photos

import (
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Thumbnail scales img so its longer edge is at most maxEdge. Smaller images
// are returned unchanged.
func Thumbnail(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}

	tw, th := maxEdge, maxEdge
	if w >= h {
		th = max(1, h*maxEdge/w)
	} else {
		tw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	return dst
}

// WriteWebP encodes img as lossy WebP at path, creating parent directories.
func WriteWebP(path string, img image.Image, quality float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
