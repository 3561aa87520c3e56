package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// Texture is a sampled 2D image. Pixel data is held until the texture is built and
// dropped afterwards.
type Texture struct {
	noCopy noCopy

	desc   gpu.TextureDescriptor
	dev    gpu.Device
	handle gpu.Handle
}

// NewTexture keeps desc for a later Build.
func NewTexture(desc gpu.TextureDescriptor) *Texture {
	return &Texture{desc: desc}
}

// Build uploads the texture if not already built and frees the CPU pixel copy.
func (t *Texture) Build(dev gpu.Device) {
	if t.handle != 0 {
		return
	}
	h, err := dev.CreateTexture(t.desc)
	if err != nil {
		buildFailed("texture", t.desc.Label, err)
	}
	t.dev = dev
	t.handle = h
	t.desc.Pixels = nil
}

// Bind builds the texture if needed and binds it to unit.
func (t *Texture) Bind(dev gpu.Device, unit int) {
	t.Build(dev)
	dev.BindTexture(unit, t.handle)
}

// Release frees the GPU texture. A released texture cannot be rebuilt because its pixels
// are gone.
func (t *Texture) Release() {
	if t.handle == 0 {
		return
	}
	t.dev.ReleaseTexture(t.handle)
	t.handle = 0
}

func (t *Texture) Built() bool { return t.handle != 0 }
func (t *Texture) Handle() gpu.Handle { return t.handle }
func (t *Texture) Label() string { return t.desc.Label }
func (t *Texture) Width() int { return t.desc.Width }
func (t *Texture) Height() int { return t.desc.Height }
