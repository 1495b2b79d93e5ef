package scenegraph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image types.
const (
	tgaTypeTrueColor    = 2
	tgaTypeTrueColorRLE = 10
)

var errTGATruncated = errors.New("tga: pixel data truncated")

func init() {
	// TGA has no magic number; match on color map type 0 and the image type byte.
	image.RegisterFormat("tga", "?\x00\x02", decodeTGA, decodeTGAConfig)
	image.RegisterFormat("tga", "?\x00\x0a", decodeTGA, decodeTGAConfig)
}

type tgaHeader struct {
	IDLength     uint8
	ColorMapType uint8
	ImageType    uint8
	ColorMapSpec [5]byte
	OriginX      uint16
	OriginY      uint16
	Width        uint16
	Height       uint16
	BitsPerPixel uint8
	Descriptor   uint8
}

func readTGAHeader(r io.Reader) (*tgaHeader, error) {
	var h tgaHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("tga: reading header: %w", err)
	}
	if h.ColorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	if h.ImageType != tgaTypeTrueColor && h.ImageType != tgaTypeTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", h.ImageType)
	}
	if h.BitsPerPixel != 24 && h.BitsPerPixel != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", h.BitsPerPixel)
	}
	return &h, nil
}

func decodeTGAConfig(r io.Reader) (image.Config, error) {
	h, err := readTGAHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// decodeTGA decodes uncompressed or RLE true-color TGA data.
func decodeTGA(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	h, err := readTGAHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	offset := 18 + int(h.IDLength)
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := &tgaDecoder{
		src:       data[offset:],
		img:       image.NewNRGBA(image.Rect(0, 0, int(h.Width), int(h.Height))),
		pixelSize: int(h.BitsPerPixel) / 8,
		topDown:   h.Descriptor&0x20 != 0,
	}
	if h.ImageType == tgaTypeTrueColor {
		err = d.readRaw()
	} else {
		err = d.readRLE()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	src       []byte
	pos       int
	img       *image.NRGBA
	pixelSize int
	topDown   bool
	written   int
}

func (d *tgaDecoder) total() int {
	b := d.img.Bounds()
	return b.Dx() * b.Dy()
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() (color.NRGBA, error) {
	if d.pos+d.pixelSize > len(d.src) {
		return color.NRGBA{}, errTGATruncated
	}
	p := d.src[d.pos : d.pos+d.pixelSize]
	d.pos += d.pixelSize

	c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.pixelSize == 4 {
		c.A = p[3]
	}
	return c, nil
}

// put stores the next pixel in file order. Rows are stored bottom-up unless
// the descriptor says otherwise.
func (d *tgaDecoder) put(c color.NRGBA) {
	w := d.img.Bounds().Dx()
	x, y := d.written%w, d.written/w
	if !d.topDown {
		y = d.img.Bounds().Dy() - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
	d.written++
}

func (d *tgaDecoder) readRaw() error {
	for d.written < d.total() {
		c, err := d.next()
		if err != nil {
			return err
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) readRLE() error {
	for d.written < d.total() {
		if d.pos >= len(d.src) {
			return errTGATruncated
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, err := d.next()
			if err != nil {
				return err
			}
			for i := 0; i < count && d.written < d.total(); i++ {
				d.put(c)
			}
			continue
		}

		for i := 0; i < count && d.written < d.total(); i++ {
			c, err := d.next()
			if err != nil {
				return err
			}
			d.put(c)
		}
	}
	return nil
}
