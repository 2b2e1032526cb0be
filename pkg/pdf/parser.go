package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// Parser parses PDF objects from tokens.
type Parser struct {
	lexer *Lexer
	tokens []Token
	pos int

	// resolveLength resolves an indirect /Length reference to a byte count.
	// The object parser has no access to the document's xref/cache, so the
	// document wires this in when it needs to parse objects out of the
	// file body.
	resolveLength func(Reference) (int64, bool)
}

// NewParser creates a new parser for the given lexer.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// NewParserFromBytes creates a new parser from a byte slice.
func NewParserFromBytes(data []byte) *Parser {
	return NewParser(NewLexerFromBytes(data))
}

// SetLengthResolver installs the callback used to resolve an indirect
// stream /Length.
func (p *Parser) SetLengthResolver(f func(Reference) (int64, bool)) {
	p.resolveLength = f
}

func (p *Parser) nextToken() (Token, error) {
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		return tok, nil
	}

	tok, err := p.lexer.NextToken()
	if err != nil {
		return Token{}, err
	}

	p.tokens = append(p.tokens, tok)
	p.pos++
	return tok, nil
}

func (p *Parser) peekToken() (Token, error) {
	tok, err := p.nextToken()
	if err != nil {
		return Token{}, err
	}
	p.pos--
	return tok, nil
}

func (p *Parser) peekTokenN(n int) (Token, error) {
	for i := len(p.tokens); i <= p.pos+n; i++ {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return Token{}, err
		}
		p.tokens = append(p.tokens, tok)
	}
	return p.tokens[p.pos+n], nil
}

// ParseObject parses a single PDF object, resolving "N G R" to a Reference.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenNull:
		return Null{}, nil

	case TokenBoolean:
		return Boolean(tok.Value.(bool)), nil

	case TokenInteger:
		// Look ahead for "G R" to recognize an indirect reference.
		next1, err := p.peekToken()
		if err == nil && next1.Type == TokenInteger {
			next2, err := p.peekTokenN(1)
			if err == nil && next2.Type == TokenRef {
				p.nextToken()
				p.nextToken()
				return Reference{
					ObjectNumber: int(tok.Value.(int64)),
					GenerationNumber: int(next1.Value.(int64)),
				}, nil
			}
		}
		return Integer(tok.Value.(int64)), nil

	case TokenReal:
		return Real(tok.Value.(float64)), nil

	case TokenString:
		return String{Value: tok.Value.([]byte), IsHex: false}, nil

	case TokenHexString:
		return String{Value: tok.Value.([]byte), IsHex: true}, nil

	case TokenName:
		return Name(tok.Value.(string)), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDictionaryOrStream()

	default:
		return nil, &MalformedError{Pos: tok.Pos, Err: fmt.Errorf("unexpected token type %d", tok.Type)}
	}
}

func (p *Parser) parseArray() (Array, error) {
	var arr Array

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenArrayEnd {
			p.nextToken()
			return arr, nil
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}

		arr = append(arr, obj)
	}
}

func (p *Parser) parseDictionary() (Dictionary, error) {
	dict := make(Dictionary)

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenDictEnd {
			p.nextToken()
			return dict, nil
		}

		keyTok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if keyTok.Type != TokenName {
			return nil, &MalformedError{Pos: keyTok.Pos, Err: fmt.Errorf("expected name as dictionary key")}
		}
		key := Name(keyTok.Value.(string))

		value, err := p.ParseObject()
		if err != nil {
			return nil, err
		}

		dict[key] = value
	}
}

// parseDictionaryOrStream parses "<<... >>" and, if immediately followed
// by the "stream" keyword, continues into a Stream value.
func (p *Parser) parseDictionaryOrStream() (Object, error) {
	dict, err := p.parseDictionary()
	if err != nil {
		return nil, err
	}

	tok, err := p.peekToken()
	if err != nil {
		if err == io.EOF {
			return dict, nil
		}
		return dict, nil
	}
	if tok.Type != TokenStreamStart {
		return dict, nil
	}
	p.nextToken()

	data, err := p.readStreamData(dict)
	if err != nil {
		return nil, err
	}

	endTok, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	if endTok.Type != TokenStreamEnd {
		return nil, &MalformedError{Pos: endTok.Pos, Err: fmt.Errorf("expected 'endstream'")}
	}

	return Stream{Dictionary: dict, Data: data}, nil
}

// ParseIndirectObject parses "N G obj... endobj".
func (p *Parser) ParseIndirectObject() (int, int, Object, error) {
	numTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if numTok.Type != TokenInteger {
		return 0, 0, nil, &MalformedError{Pos: numTok.Pos, Err: fmt.Errorf("expected object number")}
	}
	objNum := int(numTok.Value.(int64))

	genTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if genTok.Type != TokenInteger {
		return 0, 0, nil, &MalformedError{Pos: genTok.Pos, Err: fmt.Errorf("expected generation number")}
	}
	genNum := int(genTok.Value.(int64))

	objTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if objTok.Type != TokenObjStart {
		return 0, 0, nil, &MalformedError{Pos: objTok.Pos, Err: fmt.Errorf("expected 'obj' keyword")}
	}

	obj, err := p.ParseObject()
	if err != nil {
		return 0, 0, nil, err
	}

	endTok, err := p.nextToken()
	if err != nil {
		return 0, 0, nil, err
	}
	if endTok.Type != TokenObjEnd {
		return 0, 0, nil, &MalformedError{Pos: endTok.Pos, Err: fmt.Errorf("expected 'endobj' keyword, got token type %d", endTok.Type)}
	}

	return objNum, genNum, obj, nil
}

// readStreamData reads the raw bytes of a stream, honoring the rule
// that the end-of-line marker after the "stream" keyword is exactly one LF
// or CRLF — never a lone CR.
func (p *Parser) readStreamData(dict Dictionary) ([]byte, error) {
	b, err := p.lexer.readByte()
	if err != nil {
		return nil, err
	}
	switch b {
	case '\n':
		// consumed
	case '\r':
		nb, err := p.lexer.readByte()
		if err != nil || nb != '\n' {
			return nil, &MalformedError{Pos: p.lexer.Position(), Err: fmt.Errorf("stream keyword followed by lone CR")}
		}
	default:
		// Tolerate producers that omit the EOL entirely; the byte just read
		// is the first byte of stream data.
		if err := p.lexer.unreadByte(); err != nil {
			return nil, err
		}
	}

	length, resolved := p.streamLength(dict)
	if resolved {
		data, err := p.lexer.ReadBytes(int(length))
		if err == nil {
			return data, nil
		}
		// Fall through to scanning on a short read.
	}

	return p.readStreamUntilEnd()
}

func (p *Parser) streamLength(dict Dictionary) (int64, bool) {
	lengthObj := dict.Get("Length")
	switch l := lengthObj.(type) {
	case Integer:
		return int64(l), true
	case Real:
		return int64(l), true
	case Reference:
		if p.resolveLength != nil {
			return p.resolveLength(l)
		}
	}
	return 0, false
}

// readStreamUntilEnd scans for "endstream" when /Length is unusable.
func (p *Parser) readStreamUntilEnd() ([]byte, error) {
	const marker = "endstream"
	var buf bytes.Buffer

	for {
		b, err := p.lexer.readByte()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		buf.WriteByte(b)

		if buf.Len() >= len(marker) && bytes.HasSuffix(buf.Bytes(), []byte(marker)) {
			data := buf.Bytes()[:buf.Len()-len(marker)]
			// Trim the EOL that precedes "endstream".
			data = bytes.TrimRight(data, "\r\n")
			return data, nil
		}
	}

	return buf.Bytes(), nil
}

// Operation represents one content-stream operator with its operands,
// the parameter-stack-then-operator shape already materialized.
type Operation struct {
	Operator string
	Operands []Object
	Pos int64
}

// ContentStreamParser tokenizes and groups a content stream into Operations.
// Unlike the object parser, it must never fail on an unrecognized operator
// — it hands that decision to the interpreter, not the parser.
type ContentStreamParser struct {
	lexer *Lexer
}

// NewContentStreamParser creates a content-stream tokenizer over data.
func NewContentStreamParser(data []byte) *ContentStreamParser {
	return &ContentStreamParser{lexer: NewLexerFromBytes(data)}
}

// Next returns the next operation, io.EOF at end of stream. Inline image
// data (BI...ID...EI) is handled by the caller via RawInlineImageBytes,
// since its payload is not tokenizable PDF syntax.
func (p *ContentStreamParser) Next() (Operation, error) {
	var operands []Object

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return Operation{}, err
		}

		switch tok.Type {
		case TokenEOF:
			if len(operands) == 0 {
				return Operation{}, io.EOF
			}
			return Operation{}, io.EOF

		case TokenKeyword:
			return Operation{Operator: tok.Value.(string), Operands: operands, Pos: tok.Pos}, nil

		case TokenRef:
			// "R" outside of an integer pair cannot occur validly; treat the
			// literal as a bare name-less operand placeholder.
			operands = append(operands, Name("R"))

		default:
			obj, err := p.parseOperand(tok)
			if err != nil {
				return Operation{}, err
			}
			operands = append(operands, obj)
		}
	}
}

func (p *ContentStreamParser) parseOperand(tok Token) (Object, error) {
	switch tok.Type {
	case TokenNull:
		return Null{}, nil
	case TokenBoolean:
		return Boolean(tok.Value.(bool)), nil
	case TokenInteger:
		return Integer(tok.Value.(int64)), nil
	case TokenReal:
		return Real(tok.Value.(float64)), nil
	case TokenString:
		return String{Value: tok.Value.([]byte), IsHex: false}, nil
	case TokenHexString:
		return String{Value: tok.Value.([]byte), IsHex: true}, nil
	case TokenName:
		return Name(tok.Value.(string)), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDictionary()
	default:
		return nil, fmt.Errorf("unexpected token in content stream at %d", tok.Pos)
	}
}

func (p *ContentStreamParser) parseArray() (Array, error) {
	var arr Array
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenArrayEnd {
			return arr, nil
		}
		obj, err := p.parseOperand(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *ContentStreamParser) parseDictionary() (Dictionary, error) {
	dict := make(Dictionary)
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenDictEnd {
			return dict, nil
		}
		if tok.Type != TokenName {
			return nil, fmt.Errorf("expected name as dictionary key at %d", tok.Pos)
		}
		key := Name(tok.Value.(string))

		valueTok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}
		value, err := p.parseOperand(valueTok)
		if err != nil {
			return nil, err
		}
		dict[key] = value
	}
}

// RawInlineImageBytes reads raw bytes following "ID" up to the "EI"
// operator, per inline-image handling. It must be called right
// after Next() returns the "ID" operation.
func (p *ContentStreamParser) RawInlineImageBytes() ([]byte, error) {
	// A single whitespace byte separates "ID" from the data.
	if _, err := p.lexer.readByte(); err != nil {
		return nil, err
	}

	const marker = "EI"
	var buf bytes.Buffer
	for {
		b, err := p.lexer.readByte()
		if err != nil {
			return buf.Bytes(), err
		}
		buf.WriteByte(b)
		n := buf.Len()
		if n >= len(marker)+1 && isWhitespace(buf.Bytes()[n-len(marker)-1]) && bytes.HasSuffix(buf.Bytes(), []byte(marker)) {
			data := buf.Bytes()[:n-len(marker)-1]
			return data, nil
		}
	}
}

// ContentStreamOperators names every recognized PDF content-stream
// operator. The interpreter dispatches through its own switch in exec;
// nothing in the package reads this table.
var ContentStreamOperators = map[string]string{
	"w": "SetLineWidth", "J": "SetLineCap", "j": "SetLineJoin", "M": "SetMiterLimit",
	"d": "SetDashPattern", "ri": "SetRenderingIntent", "i": "SetFlatness", "gs": "SetExtGState",

	"q": "Save", "Q": "Restore", "cm": "ConcatMatrix",

	"m": "MoveTo", "l": "LineTo", "c": "CurveTo", "v": "CurveToV", "y": "CurveToY",
	"h": "ClosePath", "re": "Rectangle",

	"S": "Stroke", "s": "CloseAndStroke", "f": "Fill", "F": "FillCompat", "f*": "FillEvenOdd",
	"B": "FillAndStroke", "B*": "FillAndStrokeEvenOdd", "b": "CloseFillStroke",
	"b*": "CloseFillStrokeEvenOdd", "n": "EndPath",

	"W": "Clip", "W*": "ClipEvenOdd",

	"BT": "BeginText", "ET": "EndText",

	"Tc": "SetCharSpacing", "Tw": "SetWordSpacing", "Tz": "SetHorizontalScaling",
	"TL": "SetLeading", "Tf": "SetFont", "Tr": "SetTextRenderMode", "Ts": "SetTextRise",

	"Td": "MoveText", "TD": "MoveTextSetLeading", "Tm": "SetTextMatrix", "T*": "NextLine",

	"Tj": "ShowText", "TJ": "ShowTextArray", "'": "NextLineShowText", "\"": "NextLineShowTextSpacing",

	"d0": "SetGlyphWidth", "d1": "SetGlyphWidthAndBBox",

	"CS": "SetStrokeColorSpace", "cs": "SetFillColorSpace",
	"SC": "SetStrokeColor", "SCN": "SetStrokeColorN", "sc": "SetFillColor", "scn": "SetFillColorN",
	"G": "SetStrokeGray", "g": "SetFillGray", "RG": "SetStrokeRGB", "rg": "SetFillRGB",
	"K": "SetStrokeCMYK", "k": "SetFillCMYK",

	"sh": "PaintShading",

	"BI": "BeginInlineImage", "ID": "InlineImageData", "EI": "EndInlineImage",

	"Do": "PaintXObject",

	"MP": "MarkPoint", "DP": "MarkPointProps", "BMC": "BeginMarkedContent",
	"BDC": "BeginMarkedContentProps", "EMC": "EndMarkedContent",

	"BX": "BeginCompat", "EX": "EndCompat",
}
