package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	errMissingPages = errors.New("missing Pages in catalog")
	errPagesNotDict = errors.New("Pages is not a dictionary")
	errKidsNotArray = errors.New("Kids is not an array")
	errContentsType = errors.New("invalid Contents type")
	errMissingRoot = errors.New("missing Root in trailer")
	errRootNotDict = errors.New("Root is not a dictionary")
)

// Document is a parsed PDF file: its cross-reference chain, trailer,
// catalog, and flattened page list.
type Document struct {
	warningSink

	data []byte
	Version string
	Trailer Dictionary
	Root Dictionary
	Info Dictionary
	Pages []*Page

	xref *xrefTable
	cache *objectCache

	fontMu sync.Mutex
	fontCache map[int]*Font
}

// Open reads and parses a PDF file from disk.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewDocument(data)
}

// NewDocument parses a PDF document already held in memory.
func NewDocument(data []byte) (*Document, error) {
	doc := &Document{
		data: data,
		cache: newObjectCache(),
		fontCache: make(map[int]*Font),
	}

	if err := doc.parse(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) parse() error {
	headerLimit := len(d.data)
	if headerLimit > 1024 {
		headerLimit = 1024
	}
	if !bytes.Contains(d.data[:headerLimit], []byte("%PDF-")) {
		return &MalformedError{Err: fmt.Errorf("missing %%PDF- header")}
	}
	d.Version = detectVersion(d.data)

	xref, err := loadXRef(d.data)
	if err != nil {
		return err
	}
	d.xref = xref
	d.Trailer = xref.trailer

	if d.Trailer.Get("Encrypt") != nil {
		return &EncryptedError{Filter: detectEncryption(d.Trailer, d)}
	}

	rootRef := d.Trailer.Get("Root")
	if rootRef == nil {
		return &MalformedError{Err: errMissingRoot}
	}
	rootObj, err := d.ResolveObject(rootRef)
	if err != nil {
		return err
	}
	root, ok := rootObj.(Dictionary)
	if !ok {
		return &MalformedError{Err: errRootNotDict}
	}
	d.Root = root

	if infoRef := d.Trailer.Get("Info"); infoRef != nil {
		if infoObj, err := d.ResolveObject(infoRef); err == nil {
			if info, ok := infoObj.(Dictionary); ok {
				d.Info = info
			}
		}
	}

	return d.parsePages()
}

// detectVersion scans the header bytes for "%PDF-M.m".
func detectVersion(data []byte) string {
	limit := 1024
	if len(data) < limit {
		limit = len(data)
	}
	header := data[:limit]

	idx := bytes.Index(header, []byte("%PDF-"))
	if idx < 0 {
		return ""
	}
	start := idx + len("%PDF-")
	end := start
	for end < len(header) && header[end] != '\n' && header[end] != '\r' {
		end++
	}
	return string(bytes.TrimSpace(header[start:end]))
}

// ResolveObject follows obj if it is a Reference, otherwise returns it
// unchanged. Unresolvable references yield Null with a recoverable
// warning.
func (d *Document) ResolveObject(obj Object) (Object, error) {
	ref, ok := obj.(Reference)
	if !ok {
		return obj, nil
	}
	return d.GetObject(ref.ObjectNumber)
}

// GetObject resolves an object by number through the cache, populating it
// on first access.
func (d *Document) GetObject(objNum int) (Object, error) {
	entry, ok := d.xref.entries[objNum]
	if !ok || !entry.InUse {
		d.warn("malformed-pdf", "object %d is missing or free in the xref; resolved as null", objNum)
		return Null{}, nil
	}

	return d.cache.resolve(objNum, func() (Object, error) {
		if entry.Compressed {
			return d.getCompressedObject(entry.StreamObjNum, entry.Index)
		}
		return d.getUncompressedObject(entry.Offset)
	})
}

func (d *Document) getUncompressedObject(offset int64) (Object, error) {
	if offset < 0 || offset >= int64(len(d.data)) {
		return nil, &MalformedError{Pos: offset, Err: fmt.Errorf("object offset out of range")}
	}
	parser := NewParserFromBytes(d.data[offset:])
	parser.SetLengthResolver(d.resolveIndirectLength)
	_, _, obj, err := parser.ParseIndirectObject()
	return obj, err
}

func (d *Document) resolveIndirectLength(ref Reference) (int64, bool) {
	obj, err := d.GetObject(ref.ObjectNumber)
	if err != nil {
		return 0, false
	}
	switch v := obj.(type) {
	case Integer:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// getCompressedObject decodes objStmNum's object stream, then parses the
// member at index. The decoded stream bytes are not kept: each member's
// first resolution decodes the whole object stream again.
func (d *Document) getCompressedObject(objStmNum, index int) (Object, error) {
	streamObj, err := d.GetObject(objStmNum)
	if err != nil {
		return nil, err
	}
	stream, ok := streamObj.(Stream)
	if !ok {
		return nil, &MalformedError{Err: fmt.Errorf("object stream %d is not a stream", objStmNum)}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}

	first, ok := stream.Dictionary.GetInt("First")
	if !ok {
		return nil, &MalformedError{Err: fmt.Errorf("object stream missing /First")}
	}
	n, ok := stream.Dictionary.GetInt("N")
	if !ok {
		return nil, &MalformedError{Err: fmt.Errorf("object stream missing /N")}
	}

	headerParser := NewParserFromBytes(data[:first])
	offsets := make([]int64, n)
	for i := int64(0); i < n; i++ {
		if _, err := headerParser.ParseObject(); err != nil { // object number, unused
			return nil, err
		}
		offObj, err := headerParser.ParseObject()
		if err != nil {
			return nil, err
		}
		if off, ok := offObj.(Integer); ok {
			offsets[i] = int64(off)
		}
	}

	if index < 0 || index >= len(offsets) {
		return nil, &MalformedError{Err: fmt.Errorf("object index %d out of range", index)}
	}

	objOffset := first + offsets[index]
	if objOffset < 0 || objOffset > int64(len(data)) {
		return nil, &MalformedError{Err: fmt.Errorf("compressed object offset out of range")}
	}
	objParser := NewParserFromBytes(data[objOffset:])
	return objParser.ParseObject()
}

// NumPages returns the number of flattened pages.
func (d *Document) NumPages() int { return len(d.Pages) }

// GetPage returns the 1-indexed page.
func (d *Document) GetPage(num int) (*Page, error) {
	if num < 1 || num > len(d.Pages) {
		return nil, &InvalidArgumentError{Arg: "num", Err: fmt.Errorf("page %d out of range (1..%d)", num, len(d.Pages))}
	}
	return d.Pages[num-1], nil
}

// GetFont resolves and caches a Font entity from a resource dictionary's
// /Font entry.
func (d *Document) GetFont(ref Object) (*Font, error) {
	fontRef, isRef := ref.(Reference)

	if isRef {
		d.fontMu.Lock()
		if f, ok := d.fontCache[fontRef.ObjectNumber]; ok {
			d.fontMu.Unlock()
			return f, nil
		}
		d.fontMu.Unlock()
	}

	obj, err := d.ResolveObject(ref)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(Dictionary)
	if !ok {
		return nil, &MalformedError{Err: fmt.Errorf("font resource is not a dictionary")}
	}

	font, err := loadFont(d, dict)
	if err != nil {
		return nil, err
	}

	if isRef {
		d.fontMu.Lock()
		d.fontCache[fontRef.ObjectNumber] = font
		d.fontMu.Unlock()
	}
	return font, nil
}

// DocumentInfo is the subset of /Info metadata the end-to-end
// scenarios exercise (the supplemented "document metadata accessors").
type DocumentInfo struct {
	Title string
	Author string
	Subject string
	Keywords string
	Creator string
	Producer string
	CreationDate string
	ModDate string
	Custom map[string]string
	Encrypted bool
	PDFVersion string
}

// GetInfo reads the /Info dictionary into a DocumentInfo, leaving date
// fields as raw PDF date strings (call ParseDate to interpret them).
func (d *Document) GetInfo() DocumentInfo {
	info := DocumentInfo{
		Custom: make(map[string]string),
		PDFVersion: d.Version,
		Encrypted: d.Trailer.Get("Encrypt") != nil,
	}

	if d.Info == nil {
		return info
	}

	standardKeys := map[Name]*string{
		"Title": &info.Title,
		"Author": &info.Author,
		"Subject": &info.Subject,
		"Keywords": &info.Keywords,
		"Creator": &info.Creator,
		"Producer": &info.Producer,
		"CreationDate": &info.CreationDate,
		"ModDate": &info.ModDate,
	}

	for key, val := range d.Info {
		if dst, ok := standardKeys[key]; ok {
			*dst = objectToString(val)
			continue
		}
		if key == "Trapped" {
			continue
		}
		info.Custom[string(key)] = objectToString(val)
	}

	return info
}

func objectToString(obj Object) string {
	switch v := obj.(type) {
	case String:
		return v.Text()
	case Name:
		return string(v)
	}
	return ""
}

// GetNamedDestinations returns the set of named-destination keys declared
// in the catalog's /Dests dictionary (PDF 1.1) and /Names/Dests name tree
// (PDF 1.2+).
func (d *Document) GetNamedDestinations() map[string]bool {
	dests := make(map[string]bool)

	if destsRef := d.Root.Get("Dests"); destsRef != nil {
		if destsObj, err := d.ResolveObject(destsRef); err == nil {
			if destsDict, ok := destsObj.(Dictionary); ok {
				for name := range destsDict {
					dests[string(name)] = true
				}
			}
		}
	}

	if namesRef := d.Root.Get("Names"); namesRef != nil {
		if namesObj, err := d.ResolveObject(namesRef); err == nil {
			if namesDict, ok := namesObj.(Dictionary); ok {
				if destsRef := namesDict.Get("Dests"); destsRef != nil {
					d.collectNameTreeDests(destsRef, dests)
				}
			}
		}
	}

	return dests
}

func (d *Document) collectNameTreeDests(ref Object, dests map[string]bool) {
	obj, err := d.ResolveObject(ref)
	if err != nil {
		return
	}
	dict, ok := obj.(Dictionary)
	if !ok {
		return
	}

	if namesArr := dict.Get("Names"); namesArr != nil {
		if namesObj, err := d.ResolveObject(namesArr); err == nil {
			if arr, ok := namesObj.(Array); ok {
				for i := 0; i+1 < len(arr); i += 2 {
					if name, ok := arr[i].(String); ok {
						dests[name.Text()] = true
					}
				}
			}
		}
	}

	if kidsArr := dict.Get("Kids"); kidsArr != nil {
		if kidsObj, err := d.ResolveObject(kidsArr); err == nil {
			if arr, ok := kidsObj.(Array); ok {
				for _, kid := range arr {
					d.collectNameTreeDests(kid, dests)
				}
			}
		}
	}
}
