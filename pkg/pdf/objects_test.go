package pdf

import "testing"

func TestObjectStringFormsRoundTripTheGrammar(t *testing.T) {
	cases := []struct {
		obj Object
		want string
	}{
		{Integer(-7), "-7"},
		{Real(0.5), "0.5"},
		{Name("MediaBox"), "/MediaBox"},
		{Reference{ObjectNumber: 12, GenerationNumber: 3}, "12 3 R"},
		{String{Value: []byte("abc")}, "(abc)"},
		{String{Value: []byte{0xDE, 0xAD}, IsHex: true}, "<DEAD>"},
		{Array{Integer(1), Name("X")}, "[1 /X]"},
	}
	for _, c := range cases {
		if got := c.obj.String(); got != c.want {
			t.Errorf("%#v.String() = %q, want %q", c.obj, got, c.want)
		}
	}
}

func TestDictionaryGetIntTruncatesReal(t *testing.T) {
	dict := Dictionary{"BitsPerComponent": Real(8.9)}
	v, ok := dict.GetInt("BitsPerComponent")
	if !ok || v != 8 {
		t.Errorf("GetInt on a Real should truncate toward zero, got %v, %v", v, ok)
	}
}

func TestDictionaryGetNumberAcceptsIntegerOrReal(t *testing.T) {
	dict := Dictionary{"A": Integer(3), "B": Real(2.5)}
	if v, ok := dict.GetNumber("A"); !ok || v != 3 {
		t.Errorf("GetNumber(A) = %v, %v; want 3, true", v, ok)
	}
	if v, ok := dict.GetNumber("B"); !ok || v != 2.5 {
		t.Errorf("GetNumber(B) = %v, %v; want 2.5, true", v, ok)
	}
	if _, ok := dict.GetNumber("Missing"); ok {
		t.Error("GetNumber on a missing key should report false")
	}
}

func TestDictionaryGetOnNilDictionaryIsSafe(t *testing.T) {
	var dict Dictionary
	if v := dict.Get("Anything"); v != nil {
		t.Errorf("Get on a nil Dictionary should return nil, got %v", v)
	}
}

func TestDictionaryWrongTypeAccessorsReportFalse(t *testing.T) {
	dict := Dictionary{"Key": Integer(1)}
	if _, ok := dict.GetName("Key"); ok {
		t.Error("GetName should report false when the value is not a Name")
	}
	if _, ok := dict.GetArray("Key"); ok {
		t.Error("GetArray should report false when the value is not an Array")
	}
	if _, ok := dict.GetDict("Key"); ok {
		t.Error("GetDict should report false when the value is not a Dictionary")
	}
	if _, ok := dict.GetBool("Key"); ok {
		t.Error("GetBool should report false when the value is not a Boolean")
	}
}

func TestStringTextDetectsUTF16BEBOMOverPDFDocEncoding(t *testing.T) {
	// Without a BOM, 'Hi' decodes through PDFDocEncoding (ASCII-identical
	// in this range). With a UTF-16BE BOM, the same bytes must be read as
	// two-byte code units instead.
	plain := String{Value: []byte("Hi")}
	if plain.Text() != "Hi" {
		t.Errorf("plain bytes should decode via PDFDocEncoding, got %q", plain.Text())
	}

	utf16 := String{Value: []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}}
	if utf16.Text() != "Hi" {
		t.Errorf("UTF-16BE BOM should switch decoding, got %q", utf16.Text())
	}
}

func TestStringTextDecodesUTF8BOM(t *testing.T) {
	s := String{Value: []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}}
	if s.Text() != "hi" {
		t.Errorf("UTF-8 BOM prefix should be stripped, got %q", s.Text())
	}
}

func TestStringTextPDFDocEncodingHighRange(t *testing.T) {
	// 0x93 maps to the 'fi' ligature (U+FB01) in PDFDocEncoding, unlike
	// plain Latin-1 where it's a C1 control code.
	s := String{Value: []byte{0x93}}
	if got := []rune(s.Text())[0]; got != 0xFB01 {
		t.Errorf("PDFDocEncoding 0x93 should decode to U+FB01, got %U", got)
	}
}

func TestStreamDecodeWithNoFilterIsPassthrough(t *testing.T) {
	s := Stream{Dictionary: Dictionary{}, Data: []byte("raw bytes")}
	data, err := s.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(data) != "raw bytes" {
		t.Errorf("got %q, want unchanged passthrough", data)
	}
}

func TestRectangleFromArrayAcceptsIntegerOrRealEntries(t *testing.T) {
	// A box array's entries may legally be Integer or Real, possibly mixed.
	rect := rectangleFromArray(Array{Integer(0), Real(0), Integer(612), Real(792)})
	if rect.LLX != 0 || rect.LLY != 0 || rect.URX != 612 || rect.URY != 792 {
		t.Errorf("expected (0,0)-(612,792), got %+v", rect)
	}
}

func TestRectangleFromArrayShortArrayLeavesMissingCornersZero(t *testing.T) {
	rect := rectangleFromArray(Array{Real(1), Real(2)})
	if rect.LLX != 1 || rect.LLY != 2 || rect.URX != 0 || rect.URY != 0 {
		t.Errorf("a short rectangle array should leave trailing corners zero, got %+v", rect)
	}
}

func TestObjectToStringOnlyAcceptsTextBearingTypes(t *testing.T) {
	cases := []struct {
		obj Object
		want string
	}{
		{String{Value: []byte("Author")}, "Author"},
		{Name("DeviceRGB"), "DeviceRGB"},
		{Integer(42), ""},
		{Array{Integer(1)}, ""},
	}
	for _, c := range cases {
		if got := objectToString(c.obj); got != c.want {
			t.Errorf("objectToString(%#v) = %q, want %q", c.obj, got, c.want)
		}
	}
}
