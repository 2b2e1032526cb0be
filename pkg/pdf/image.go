package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

// DecodedImage is an Image XObject decoded to a standard Go image, the
// unit the SVG emitter embeds as a data-URI `<image>` element.
// Supported inputs: raw DeviceGray/RGB (optionally predictor-filtered),
// Indexed through a palette, and DCT (baseline/progressive JPEG, RGB and
// grayscale). Anything else is the caller's responsibility to skip with a
// warning: this decoder returns an error rather than guessing.
type DecodedImage struct {
	Image image.Image
	IsMask bool // /ImageMask true: paint with the current fill color, not pixel data
}

// DecodeImageXObject decodes an Image XObject stream. Color
// key masking and soft masks beyond a plain alpha channel are not applied:
// out of scope per the image decoder's stated support list.
func (d *Document) DecodeImageXObject(stream Stream, resources Dictionary) (*DecodedImage, error) {
	dict := stream.Dictionary

	// JPXDecode and CCITTFaxDecode leave the filter pipeline still encoded;
	// reject them here instead of reading the bytes as raw samples.
	var lastFilter Name
	switch filter := dict.Get("Filter").(type) {
	case Name:
		lastFilter = filter
	case Array:
		if len(filter) > 0 {
			lastFilter, _ = filter[len(filter)-1].(Name)
		}
	}
	switch lastFilter {
	case "JPXDecode", "CCITTFaxDecode", "CCF":
		return nil, &FilterError{Filter: string(lastFilter), Err: fmt.Errorf("image encoding not supported")}
	}

	if isMask, _ := dict.GetBool("ImageMask"); isMask {
		mono, err := decodeImageMask(stream)
		if err != nil {
			return nil, err
		}
		return &DecodedImage{Image: mono, IsMask: true}, nil
	}

	if isDCT(dict) {
		img, err := decodeDCTImage(stream)
		if err != nil {
			return nil, err
		}
		return &DecodedImage{Image: img}, nil
	}

	width, _ := dict.GetInt("Width")
	height, _ := dict.GetInt("Height")
	if width <= 0 || height <= 0 {
		return nil, &FilterError{Filter: "image", Err: fmt.Errorf("invalid /Width or /Height")}
	}

	bpc, ok := dict.GetInt("BitsPerComponent")
	if !ok {
		bpc = 8
	}

	var cs ColorSpace
	if csObj := dict.Get("ColorSpace"); csObj != nil {
		cs = d.ResolveColorSpace(csObj, resources)
	} else {
		cs = ColorSpace{Kind: CSDeviceGray, Components: 1}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}

	img, err := rasterizeRaw(data, int(width), int(height), int(bpc), cs)
	if err != nil {
		return nil, err
	}
	return &DecodedImage{Image: img}, nil
}

func isDCT(dict Dictionary) bool {
	switch filter := dict.Get("Filter").(type) {
	case Name:
		return filter == "DCTDecode"
	case Array:
		if len(filter) == 0 {
			return false
		}
		last, _ := filter[len(filter)-1].(Name)
		return last == "DCTDecode"
	}
	return false
}

func decodeDCTImage(stream Stream) (image.Image, error) {
	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FilterError{Filter: "DCTDecode", Err: err}
	}
	return img, nil
}

// rasterizeRaw unpacks BitsPerComponent-packed samples, row by row (rows
// are byte-aligned, per the filter pipeline's predictor row geometry), and
// converts each pixel through the color space to RGB.
func rasterizeRaw(data []byte, width, height, bpc int, cs ColorSpace) (image.Image, error) {
	comps := cs.NumComponents()
	if cs.Kind == CSIndexed {
		// One palette index per pixel; Components is the palette entry width.
		comps = 1
	}
	rowBits := width * comps * bpc
	rowBytes := (rowBits + 7) / 8

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	samples := make([]float64, comps)
	maxVal := float64((int64(1) << uint(bpc)) - 1)

	for y := 0; y < height; y++ {
		rowStart := y * rowBytes
		if rowStart+rowBytes > len(data) {
			break
		}
		row := data[rowStart : rowStart+rowBytes]
		br := newBitReader(row)

		for x := 0; x < width; x++ {
			for c := 0; c < comps; c++ {
				v, ok := br.read(bpc)
				if !ok {
					v = 0
				}
				if cs.Kind == CSIndexed {
					samples[c] = float64(v)
				} else {
					samples[c] = float64(v) / maxVal
				}
			}
			rgb := cs.ToRGB(samples)
			out.Set(x, y, color.RGBA{
				R: clamp255(rgb.R),
				G: clamp255(rgb.G),
				B: clamp255(rgb.B),
				A: 255,
			})
		}
	}
	return out, nil
}

func decodeImageMask(stream Stream) (image.Image, error) {
	dict := stream.Dictionary
	width, _ := dict.GetInt("Width")
	height, _ := dict.GetInt("Height")
	if width <= 0 || height <= 0 {
		return nil, &FilterError{Filter: "image-mask", Err: fmt.Errorf("invalid /Width or /Height")}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}

	decodeArr, _ := dict.GetArray("Decode")
	invert := len(decodeArr) == 2
	if invert {
		if n, ok := decodeArr[0].(Integer); ok {
			invert = n == 1
		}
	}

	rowBytes := (int(width) + 7) / 8
	out := image.NewAlpha(image.Rect(0, 0, int(width), int(height)))
	for y := 0; y < int(height); y++ {
		rowStart := y * rowBytes
		if rowStart+rowBytes > len(data) {
			break
		}
		row := data[rowStart : rowStart+rowBytes]
		for x := 0; x < int(width); x++ {
			bit := (row[x/8] >> (7 - uint(x%8))) & 1
			painted := bit == 0
			if invert {
				painted = !painted
			}
			if painted {
				out.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return out, nil
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// encodeImagePNG re-encodes a decoded raster to PNG for embedding as an
// SVG data URI. PNG rather than JPEG round-trip keeps a single embedding
// format regardless of the source filter (raw samples or DCT), and
// stdlib image/png is the format's own reference encoder — no third-party
// PNG encoder exists in the ecosystem as an idiomatic alternative.
func encodeImagePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeMaskPNG bakes an /ImageMask's current fill color directly into an
// RGBA PNG's pixels, alpha taken from the mask: SVG raster <image> content
// ignores the `fill` property, so color has to be part of the pixel data
// rather than an attribute on the element using it.
func encodeMaskPNG(mask image.Image, fillColor RGB) ([]byte, error) {
	bounds := mask.Bounds()
	out := image.NewRGBA(bounds)
	r, g, b := clamp255(fillColor.R), clamp255(fillColor.G), clamp255(fillColor.B)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := mask.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{R: r, G: g, B: b, A: uint8(a >> 8)})
		}
	}
	return encodeImagePNG(out)
}

// bitReader reads fixed-width bit fields MSB-first from a byte row, the
// packing PDF's image sample data always uses.
type bitReader struct {
	data []byte
	pos int // bit position
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) read(bits int) (uint32, bool) {
	var v uint32
	for i := 0; i < bits; i++ {
		byteIdx := r.pos / 8
		if byteIdx >= len(r.data) {
			return v, false
		}
		bitIdx := 7 - uint(r.pos%8)
		bit := (r.data[byteIdx] >> bitIdx) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v, true
}
