package pdf

// Rectangle represents a PDF rectangle (lower-left/upper-right corners).
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

func (r Rectangle) Width() float64 { return r.URX - r.LLX }
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Page is one flattened leaf of the page tree, with the inheritable
// attributes (/Resources, /MediaBox, /CropBox, /Rotate) already resolved
// down from its ancestors.
type Page struct {
	doc *Document
	Dictionary Dictionary
	Number int
	MediaBox Rectangle
	CropBox Rectangle
	Resources Dictionary
	Rotate int
}

func (p *Page) Width() float64 { return p.MediaBox.Width() }
func (p *Page) Height() float64 { return p.MediaBox.Height() }

// inherited carries page-tree attributes down through Kids, each
// overridden at a node only if that node declares its own value.
type inherited struct {
	resources Dictionary
	mediaBox Rectangle
	cropBox Rectangle
	rotate int
	hasBox bool
	hasCrop bool
}

func (d *Document) parsePages() error {
	pagesRef := d.Root.Get("Pages")
	if pagesRef == nil {
		return &MalformedError{Err: errMissingPages}
	}

	pagesObj, err := d.ResolveObject(pagesRef)
	if err != nil {
		return err
	}
	pagesDict, ok := pagesObj.(Dictionary)
	if !ok {
		return &MalformedError{Err: errPagesNotDict}
	}

	visited := make(map[int]bool)
	return d.walkPagesNode(pagesDict, inherited{}, visited)
}

func (d *Document) walkPagesNode(node Dictionary, parent inherited, visited map[int]bool) error {
	inh := parent
	if res, ok := node.GetDict("Resources"); ok {
		inh.resources = res
	} else if resRef := node.Get("Resources"); resRef != nil {
		if resObj, err := d.ResolveObject(resRef); err == nil {
			if res, ok := resObj.(Dictionary); ok {
				inh.resources = res
			}
		}
	}
	if mb, ok := d.resolveRectangle(node, "MediaBox"); ok {
		inh.mediaBox, inh.hasBox = mb, true
	}
	if cb, ok := d.resolveRectangle(node, "CropBox"); ok {
		inh.cropBox, inh.hasCrop = cb, true
	}
	if rot, ok := node.GetInt("Rotate"); ok {
		inh.rotate = int(((rot % 360) + 360) % 360)
	}

	nodeType, _ := node.GetName("Type")

	if nodeType == "Page" || (nodeType == "" && node.Get("Kids") == nil) {
		page := &Page{
			doc: d,
			Dictionary: node,
			Number: len(d.Pages) + 1,
			Resources: inh.resources,
			Rotate: inh.rotate,
		}
		if inh.hasBox {
			page.MediaBox = inh.mediaBox
		}
		if inh.hasCrop {
			page.CropBox = inh.cropBox
		} else {
			page.CropBox = page.MediaBox
		}
		d.Pages = append(d.Pages, page)
		return nil
	}

	kidsRef := node.Get("Kids")
	if kidsRef == nil {
		return nil
	}
	kidsObj, err := d.ResolveObject(kidsRef)
	if err != nil {
		return err
	}
	kids, ok := kidsObj.(Array)
	if !ok {
		return &MalformedError{Err: errKidsNotArray}
	}

	for _, kidRef := range kids {
		if ref, ok := kidRef.(Reference); ok {
			if visited[ref.ObjectNumber] {
				continue
			}
			visited[ref.ObjectNumber] = true
		}

		kidObj, err := d.ResolveObject(kidRef)
		if err != nil {
			d.warn("malformed-pdf", "skipping unresolvable page-tree kid: %v", err)
			continue
		}
		kidDict, ok := kidObj.(Dictionary)
		if !ok {
			continue
		}
		if err := d.walkPagesNode(kidDict, inh, visited); err != nil {
			return err
		}
	}

	return nil
}

func (d *Document) resolveRectangle(node Dictionary, key string) (Rectangle, bool) {
	obj := node.Get(key)
	if obj == nil {
		return Rectangle{}, false
	}
	resolved, err := d.ResolveObject(obj)
	if err != nil {
		return Rectangle{}, false
	}
	arr, ok := resolved.(Array)
	if !ok || len(arr) != 4 {
		return Rectangle{}, false
	}
	return Rectangle{
		LLX: d.numberOrZero(arr[0]),
		LLY: d.numberOrZero(arr[1]),
		URX: d.numberOrZero(arr[2]),
		URY: d.numberOrZero(arr[3]),
	}, true
}

func (d *Document) numberOrZero(obj Object) float64 {
	resolved, err := d.ResolveObject(obj)
	if err != nil {
		return 0
	}
	switch v := resolved.(type) {
	case Integer:
		return float64(v)
	case Real:
		return float64(v)
	}
	return 0
}

// GetContents returns the page's content stream bytes, concatenating
// multiple streams with a newline separator when /Contents is an array.
func (p *Page) GetContents() ([]byte, error) {
	contentsRef := p.Dictionary.Get("Contents")
	if contentsRef == nil {
		return nil, nil
	}

	contentsObj, err := p.doc.ResolveObject(contentsRef)
	if err != nil {
		return nil, err
	}

	switch contents := contentsObj.(type) {
	case Stream:
		return contents.Decode()
	case Array:
		var buf []byte
		for _, ref := range contents {
			streamObj, err := p.doc.ResolveObject(ref)
			if err != nil {
				continue
			}
			stream, ok := streamObj.(Stream)
			if !ok {
				continue
			}
			data, err := stream.Decode()
			if err != nil {
				p.doc.warn("filter-error", "skipping content stream: %v", err)
				continue
			}
			buf = append(buf, data...)
			buf = append(buf, '\n')
		}
		return buf, nil
	}

	return nil, &MalformedError{Err: errContentsType}
}
