package extract

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const maxPatternNames = 20

var (
	pdfLiteralRe   = regexp.MustCompile(`(?s)\(((?:\\.|[^\\()])*)\)`)
	pdfTjRe        = regexp.MustCompile(`(?s)\(((?:\\.|[^\\()])*)\)\s*Tj`)
	pdfTJArrayRe   = regexp.MustCompile(`(?s)\[((?:\((?:\\.|[^\\()])*\)|[^\]\\])*)\]\s*TJ`)
	pdfWhitelistRe = regexp.MustCompile(`^[A-Za-z0-9 \t@.,:;'"&/#%+\-_!?|()*]+$`)

	patternNameRe  = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,3}\b`)
	patternEmailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	patternWaRe    = regexp.MustCompile(`wa\.me/\+?\d{6,15}`)
	patternURLRe   = regexp.MustCompile(`https?://[^\s()<>\[\]"']+`)

	pdfObjectRe  = regexp.MustCompile(`(?s)\d+\s+\d+\s+obj\b.*?\bendobj\b`)
	pdfDictRe    = regexp.MustCompile(`(?s)<<.*?>>`)
	pdfHeaderRe  = regexp.MustCompile(`%PDF-\d+(?:\.\d+)?|%%EOF`)
	pdfCommentRe = regexp.MustCompile(`(?m)^%.*$`)
	pdfKeywordRe = regexp.MustCompile(`\b(?:obj|endobj|stream|endstream|xref|trailer|startxref)\b`)
)

// pdfStructuralTokens are PDF syntax and dictionary names that show up inside
// string literals but never in CV prose.
var pdfStructuralTokens = map[string]struct{}{
	"obj": {}, "endobj": {}, "stream": {}, "endstream": {}, "xref": {}, "trailer": {}, "startxref": {},
	"FontDescriptor": {}, "FontName": {}, "FontFile": {}, "FontFile2": {}, "FontFile3": {}, "FontBBox": {},
	"BaseFont": {}, "Encoding": {}, "WinAnsiEncoding": {}, "MacRomanEncoding": {}, "StandardEncoding": {},
	"PDFDocEncoding": {}, "Identity-H": {}, "Identity-V": {}, "Type": {}, "Subtype": {}, "Font": {},
	"Page": {}, "Pages": {}, "Catalog": {}, "Parent": {}, "Resources": {}, "MediaBox": {}, "CropBox": {},
	"Contents": {}, "Length": {}, "Length1": {}, "Filter": {}, "FlateDecode": {}, "DCTDecode": {},
	"ASCIIHexDecode": {}, "ProcSet": {}, "XObject": {}, "ExtGState": {}, "Producer": {}, "Creator": {},
	"CreationDate": {}, "ModDate": {}, "Metadata": {}, "Annots": {}, "Widths": {}, "FirstChar": {},
	"LastChar": {}, "ToUnicode": {}, "DescendantFonts": {}, "CIDFontType0": {}, "CIDFontType2": {},
	"CIDSystemInfo": {}, "CIDToGIDMap": {}, "TrueType": {}, "Type0": {}, "Type1": {}, "Type3": {},
	"Ascent": {}, "Descent": {}, "CapHeight": {}, "StemV": {}, "ItalicAngle": {}, "XHeight": {},
	"Outlines": {}, "Kids": {}, "Linearized": {}, "ObjStm": {}, "XRef": {}, "DecodeParms": {},
	"Predictor": {}, "ImageB": {}, "ImageC": {}, "ImageI": {}, "Helvetica": {}, "Times-Roman": {},
	"Courier": {}, "ZapfDingbats": {}, "ArialMT": {}, "Skia": {}, "Quartz": {}, "PScript5": {},
}

// PDFReader decodes the document with a structural PDF parser. It recovers
// well-formed files only; malformed input yields "".
type PDFReader struct{}

func (PDFReader) Name() string { return "pdf_reader" }

func (PDFReader) Recover(doc Document) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return ""
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return collapseWhitespace(stripNonPrintable(buf.String()))
}

// PDFLiteralScan collects parenthesis string literals from content streams.
type PDFLiteralScan struct{}

func (PDFLiteralScan) Name() string { return "pdf_literal_scan" }

func (PDFLiteralScan) Recover(doc Document) string {
	raw := latin1(doc.Data)
	var lines []string
	for _, m := range pdfLiteralRe.FindAllStringSubmatch(raw, -1) {
		if lit := unescapePDFString(m[1]); acceptLiteral(lit) {
			lines = append(lines, strings.TrimSpace(lit))
		}
	}
	return strings.Join(lines, "\n")
}

// PDFOperatorScan follows text-show operators: "(...) Tj" and "[...] TJ".
// TJ arrays are joined before filtering so kerned fragments form words.
type PDFOperatorScan struct{}

func (PDFOperatorScan) Name() string { return "pdf_operator_scan" }

func (PDFOperatorScan) Recover(doc Document) string {
	raw := latin1(doc.Data)
	var lines []string
	for _, m := range pdfTjRe.FindAllStringSubmatch(raw, -1) {
		if lit := unescapePDFString(m[1]); acceptLiteral(lit) {
			lines = append(lines, strings.TrimSpace(lit))
		}
	}
	for _, m := range pdfTJArrayRe.FindAllStringSubmatch(raw, -1) {
		if joined := joinTJArray(m[1]); acceptLiteral(joined) {
			lines = append(lines, strings.TrimSpace(joined))
		}
	}
	return strings.Join(lines, "\n")
}

// PDFPatternScan looks for CV-shaped substrings anywhere in the raw bytes:
// capitalized name runs, emails, WhatsApp links and URLs.
type PDFPatternScan struct{}

func (PDFPatternScan) Name() string { return "pdf_pattern_scan" }

func (PDFPatternScan) Recover(doc Document) string {
	raw := latin1(doc.Data)
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	names := 0
	for _, name := range patternNameRe.FindAllString(raw, -1) {
		if names >= maxPatternNames {
			break
		}
		if isPDFStructural(name) {
			continue
		}
		add(name)
		names++
	}
	for _, re := range []*regexp.Regexp{patternEmailRe, patternWaRe, patternURLRe} {
		for _, m := range re.FindAllString(raw, -1) {
			add(m)
		}
	}
	return strings.Join(out, "\n")
}

func acceptLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) >= 200 {
		return false
	}
	if countLetters(s) < 2 {
		return false
	}
	if !pdfWhitelistRe.MatchString(s) {
		return false
	}
	return !isPDFStructural(s)
}

func isPDFStructural(s string) bool {
	if strings.HasPrefix(strings.TrimSpace(s), "/") {
		return true
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-')
	})
	for _, f := range fields {
		if _, ok := pdfStructuralTokens[f]; ok {
			return true
		}
	}
	return false
}

// joinTJArray concatenates the literals of a TJ array. Large negative
// adjustments between literals are treated as word spaces.
func joinTJArray(body string) string {
	var b strings.Builder
	last := 0
	for _, idx := range pdfLiteralRe.FindAllStringSubmatchIndex(body, -1) {
		if gap := strings.TrimSpace(body[last:idx[0]]); gap != "" && b.Len() > 0 {
			if v, err := strconv.ParseFloat(gap, 64); err == nil && v <= -200 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(unescapePDFString(body[idx[2]:idx[3]]))
		last = idx[1]
	}
	return b.String()
}

// unescapePDFString decodes the escapes of a literal string body in one left
// to right pass. Octal escapes outside printable ASCII are dropped.
func unescapePDFString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n', 'r', 't':
			b.WriteByte(' ')
		case 'b', 'f', '\n':
			// dropped; an escaped newline continues the line
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(e - '0')
			for n := 1; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			if v >= 0x20 && v <= 0x7e {
				b.WriteByte(byte(v))
			}
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}

func cleanPDFText(s string) string {
	s = stripNonPrintable(s)
	s = pdfObjectRe.ReplaceAllString(s, " ")
	s = pdfDictRe.ReplaceAllString(s, " ")
	s = pdfHeaderRe.ReplaceAllString(s, " ")
	s = pdfCommentRe.ReplaceAllString(s, "")
	s = pdfKeywordRe.ReplaceAllString(s, " ")
	return collapseWhitespace(s)
}
