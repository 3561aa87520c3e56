package loader

import (
	"image"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/resource"
	"golang.org/x/image/draw"
)

// Image is a decoded texture in tightly packed 8-bit RGBA rows, top row first.
type Image struct {
	Pixels   []byte
	Width    int
	Height   int
	Channels int
}

// TextureDescriptor converts the image into an RGBA8 texture description with linear
// filtering and repeat wrapping.
//
// Parameters:
//   - label: the texture label used in logs and errors
//
// Returns:
//   - gpu.TextureDescriptor: the description for gpu.Device.CreateTexture
func (img Image) TextureDescriptor(label string) gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Label:  label,
		Width:  img.Width,
		Height: img.Height,
		Format: gpu.FormatRGBA8,
		Pixels: img.Pixels,
		Filter: gpu.FilterLinear,
		Wrap:   gpu.WrapRepeat,
	}
}

// Texture wraps the image in a resource.Texture that uploads on first use.
func (img Image) Texture(label string) *resource.Texture {
	return resource.NewTexture(img.TextureDescriptor(label))
}

// fromImage copies any decoded image into a packed RGBA Image.
func fromImage(src image.Image) Image {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}
	return Image{Pixels: rgba.Pix, Width: b.Dx(), Height: b.Dy(), Channels: 4}
}

// fit downscales img so neither side exceeds maxSize. A non-positive maxSize keeps
// the original size.
func fit(img Image, maxSize int) Image {
	if maxSize <= 0 || (img.Width <= maxSize && img.Height <= maxSize) {
		return img
	}
	scale := float64(maxSize) / float64(max(img.Width, img.Height))
	w := max(int(float64(img.Width)*scale), 1)
	h := max(int(float64(img.Height)*scale), 1)

	src := &image.RGBA{Pix: img.Pixels, Stride: 4 * img.Width, Rect: image.Rect(0, 0, img.Width, img.Height)}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return Image{Pixels: dst.Pix, Width: w, Height: h, Channels: 4}
}
