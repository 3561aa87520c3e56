package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mauserzjeh/dxt"
)

const (
	ddsMagic      = "DDS "
	ddsHeaderSize = 128

	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
)

// ddsLoaderBackend decodes the top mip level of DirectDraw Surface files holding
// DXT1, DXT5 or uncompressed 32-bit pixels.
type ddsLoaderBackend struct{}

var _ loaderBackend = &ddsLoaderBackend{}

func newDDSLoaderBackend() loaderBackend {
	return &ddsLoaderBackend{}
}

func (b *ddsLoaderBackend) Extensions() []string {
	return []string{".dds"}
}

// ddsHeader holds the fields of the 124-byte DDS header the decoder needs.
type ddsHeader struct {
	width, height uint32
	pfFlags       uint32
	fourCC        string
	bitCount      uint32
	masks         [4]uint32
}

func parseDDSHeader(raw []byte) (ddsHeader, error) {
	if len(raw) < ddsHeaderSize || string(raw[:4]) != ddsMagic {
		return ddsHeader{}, errors.New("dds: missing magic")
	}
	le := binary.LittleEndian
	h := ddsHeader{
		height:   le.Uint32(raw[12:]),
		width:    le.Uint32(raw[16:]),
		pfFlags:  le.Uint32(raw[80:]),
		fourCC:   string(raw[84:88]),
		bitCount: le.Uint32(raw[88:]),
	}
	for i := range h.masks {
		h.masks[i] = le.Uint32(raw[92+4*i:])
	}
	if h.width == 0 || h.height == 0 {
		return ddsHeader{}, fmt.Errorf("dds: invalid size %dx%d", h.width, h.height)
	}
	return h, nil
}

func (b *ddsLoaderBackend) Decode(r io.Reader) (Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Image{}, fmt.Errorf("dds: %w", err)
	}
	h, err := parseDDSHeader(raw)
	if err != nil {
		return Image{}, err
	}
	data := raw[ddsHeaderSize:]
	w, ht := uint(h.width), uint(h.height)
	blocks := int((w+3)/4) * int((ht+3)/4)

	var pix []byte
	switch {
	case h.pfFlags&ddpfFourCC != 0 && h.fourCC == "DXT1":
		if len(data) < blocks*8 {
			return Image{}, fmt.Errorf("dds: DXT1 data is %d bytes, want %d", len(data), blocks*8)
		}
		pix, err = dxt.DecodeDXT1(data[:blocks*8], w, ht)
	case h.pfFlags&ddpfFourCC != 0 && h.fourCC == "DXT5":
		if len(data) < blocks*16 {
			return Image{}, fmt.Errorf("dds: DXT5 data is %d bytes, want %d", len(data), blocks*16)
		}
		pix, err = dxt.DecodeDXT5(data[:blocks*16], w, ht)
	case h.pfFlags&ddpfRGB != 0 && h.bitCount == 32:
		pix, err = unpackRGBA32(data, h)
	default:
		return Image{}, fmt.Errorf("%w: dds pixel format %q (flags %#x)", ErrUnsupportedFormat, h.fourCC, h.pfFlags)
	}
	if err != nil {
		return Image{}, fmt.Errorf("dds: %w", err)
	}
	return Image{Pixels: pix, Width: int(w), Height: int(ht), Channels: 4}, nil
}

// unpackRGBA32 reorders 32-bit pixels from the header's channel masks into RGBA.
func unpackRGBA32(data []byte, h ddsHeader) ([]byte, error) {
	n := int(h.width) * int(h.height)
	if len(data) < n*4 {
		return nil, fmt.Errorf("RGBA data is %d bytes, want %d", len(data), n*4)
	}
	alpha := h.pfFlags&ddpfAlphaPixels != 0
	out := make([]byte, n*4)
	for i := range n {
		p := binary.LittleEndian.Uint32(data[i*4:])
		for c := range 3 {
			out[i*4+c] = maskedByte(p, h.masks[c])
		}
		out[i*4+3] = 255
		if alpha {
			out[i*4+3] = maskedByte(p, h.masks[3])
		}
	}
	return out, nil
}

// maskedByte extracts the 8-bit channel selected by mask.
func maskedByte(p, mask uint32) byte {
	if mask == 0 {
		return 0
	}
	shift := 0
	for mask&1 == 0 {
		mask >>= 1
		shift++
	}
	return byte((p >> shift) & mask)
}
