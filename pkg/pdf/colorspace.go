package pdf

// RGB is a device color in the 0..1 range, the SVG emitter's only color
// currency.
type RGB struct {
	R, G, B float64
}

// ColorSpaceKind classifies a resolved color space to the handful the
// interpreter actually paints with; anything else is mapped onto the
// nearest of these by ResolveColorSpace, with a warning where that is a
// downgrade (ICCBased follows its /Alternate or /N without one).
type ColorSpaceKind int

const (
	CSDeviceGray ColorSpaceKind = iota
	CSDeviceRGB
	CSDeviceCMYK
	CSIndexed
)

// ColorSpace is a resolved color space: its paint kind plus, for Indexed,
// the palette lookup table and base components-per-entry.
type ColorSpace struct {
	Kind ColorSpaceKind
	Components int
	BaseKind ColorSpaceKind
	Palette []byte
	HighestIndex int
}

func (c ColorSpace) NumComponents() int {
	if c.Components > 0 {
		return c.Components
	}
	switch c.Kind {
	case CSDeviceGray:
		return 1
	case CSDeviceCMYK:
		return 4
	default:
		return 3
	}
}

// ResolveColorSpace interprets a /ColorSpace entry (a Name for device
// spaces, or an Array for Indexed/ICCBased/Separation), resolving through
// the document's resource dictionaries.
func (d *Document) ResolveColorSpace(obj Object, resources Dictionary) ColorSpace {
	resolved, err := d.ResolveObject(obj)
	if err != nil {
		d.warn("unsupported-feature", "color space resolution failed: %v", err)
		return ColorSpace{Kind: CSDeviceGray, Components: 1}
	}

	switch v := resolved.(type) {
	case Name:
		switch v {
		case "DeviceGray", "CalGray", "G":
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		case "DeviceRGB", "CalRGB", "RGB":
			return ColorSpace{Kind: CSDeviceRGB, Components: 3}
		case "DeviceCMYK", "CMYK":
			return ColorSpace{Kind: CSDeviceCMYK, Components: 4}
		case "Pattern":
			d.warn("unsupported-feature", "pattern color space downgraded to DeviceGray")
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		default:
			if resources != nil {
				if csRes, ok := resources.GetDict("ColorSpace"); ok {
					if inner := csRes.Get(string(v)); inner != nil {
						return d.ResolveColorSpace(inner, resources)
					}
				}
			}
			d.warn("unsupported-feature", "unknown color space %q downgraded to DeviceGray", v)
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		}

	case Array:
		if len(v) == 0 {
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		}
		family, _ := v[0].(Name)
		switch family {
		case "ICCBased":
			return d.resolveICCBased(v, resources)
		case "Indexed":
			return d.resolveIndexed(v, resources)
		case "Separation", "DeviceN":
			n := 1
			if family == "DeviceN" && len(v) > 1 {
				if names, ok := v[1].(Array); ok {
					n = len(names)
				}
			}
			d.warn("unsupported-feature", "%s color space downgraded to DeviceGray", family)
			return ColorSpace{Kind: CSDeviceGray, Components: n}
		case "CalGray":
			d.warn("unsupported-feature", "%s color space downgraded to DeviceGray", family)
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		case "CalRGB", "Lab":
			d.warn("unsupported-feature", "%s color space downgraded to DeviceRGB", family)
			return ColorSpace{Kind: CSDeviceRGB, Components: 3}
		default:
			d.warn("unsupported-feature", "unknown color space family %q downgraded to DeviceGray", family)
			return ColorSpace{Kind: CSDeviceGray, Components: 1}
		}
	}

	return ColorSpace{Kind: CSDeviceGray, Components: 1}
}

func (d *Document) resolveICCBased(arr Array, resources Dictionary) ColorSpace {
	if len(arr) < 2 {
		return ColorSpace{Kind: CSDeviceRGB, Components: 3}
	}
	streamObj, err := d.ResolveObject(arr[1])
	if err != nil {
		return ColorSpace{Kind: CSDeviceRGB, Components: 3}
	}
	stream, ok := streamObj.(Stream)
	if !ok {
		return ColorSpace{Kind: CSDeviceRGB, Components: 3}
	}
	if alt := stream.Dictionary.Get("Alternate"); alt != nil {
		return d.ResolveColorSpace(alt, resources)
	}
	n, _ := stream.Dictionary.GetInt("N")
	switch n {
	case 1:
		return ColorSpace{Kind: CSDeviceGray, Components: 1}
	case 4:
		return ColorSpace{Kind: CSDeviceCMYK, Components: 4}
	default:
		return ColorSpace{Kind: CSDeviceRGB, Components: 3}
	}
}

func (d *Document) resolveIndexed(arr Array, resources Dictionary) ColorSpace {
	if len(arr) < 4 {
		return ColorSpace{Kind: CSDeviceGray, Components: 1}
	}
	base := d.ResolveColorSpace(arr[1], resources)

	highest := 0
	if hi, err := d.ResolveObject(arr[2]); err == nil {
		if n, ok := hi.(Integer); ok {
			highest = int(n)
		}
	}

	var palette []byte
	lookup, err := d.ResolveObject(arr[3])
	if err == nil {
		switch v := lookup.(type) {
		case String:
			palette = v.Value
		case Stream:
			if data, err := v.Decode(); err == nil {
				palette = data
			}
		}
	}

	return ColorSpace{
		Kind: CSIndexed,
		BaseKind: base.Kind,
		Components: base.NumComponents(),
		Palette: palette,
		HighestIndex: highest,
	}
}

// ToRGB converts component values (already in the space's native range,
// 0..1 for device spaces, 0..HighestIndex for Indexed) to RGB.
func (c ColorSpace) ToRGB(components []float64) RGB {
	switch c.Kind {
	case CSDeviceGray:
		if len(components) < 1 {
			return RGB{}
		}
		g := components[0]
		return RGB{g, g, g}

	case CSDeviceRGB:
		if len(components) < 3 {
			return RGB{}
		}
		return RGB{components[0], components[1], components[2]}

	case CSDeviceCMYK:
		if len(components) < 4 {
			return RGB{}
		}
		cc, m, y, k := components[0], components[1], components[2], components[3]
		return RGB{
			R: (1 - cc) * (1 - k),
			G: (1 - m) * (1 - k),
			B: (1 - y) * (1 - k),
		}

	case CSIndexed:
		if len(components) < 1 {
			return RGB{}
		}
		idx := int(components[0])
		n := c.Components
		off := idx * n
		if off < 0 || off+n > len(c.Palette) {
			return RGB{}
		}
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = float64(c.Palette[off+i]) / 255
		}
		base := ColorSpace{Kind: c.BaseKind, Components: n}
		return base.ToRGB(vals)
	}

	return RGB{}
}
