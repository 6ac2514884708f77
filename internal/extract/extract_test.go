package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfWithContent(content string) []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n" +
		"4 0 obj\n<< /Length 400 >>\nstream\nBT /F1 12 Tf 72 712 Td\n" + content + "\nET\nendstream\nendobj\n%%EOF\n")
}

func TestPlainTextIsIdentity(t *testing.T) {
	in := "  Name: Alice Wong\n\nSkills: Go, SQL\t\n"
	res := New().Extract(NewDocument([]byte(in), "text/plain; charset=utf-8", "cv.txt"))

	assert.Equal(t, in, res.Text)
	assert.Equal(t, "plain_text", res.Strategy)
	assert.False(t, res.Degraded)
}

func TestPDFStructuralLiteralsYieldPlaceholder(t *testing.T) {
	data := pdfWithContent("(obj) Tj (stream) Tj (FontDescriptor) Tj (WinAnsiEncoding) Tj")
	res := New().Extract(NewDocument(data, MediaTypePDF, "scan.pdf"))

	require.True(t, res.Degraded)
	assert.Contains(t, res.Text, "[PDF text extraction incomplete]")
	assert.Contains(t, res.Text, "scan.pdf")
	assert.Contains(t, res.Text, "DOCX")
}

func TestUnescapePDFString(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"octal letter", `\101lice`, "Alice"},
		{"escaped backslash before digits", `\\101`, `\101`},
		{"parentheses", `a\(b\)`, "a(b)"},
		{"control octal dropped", `x\0y`, "xy"},
		{"whitespace escapes", `a\tb\nc`, "a b c"},
		{"line continuation", "Software \\\nEngineer", "Software Engineer"},
		{"crlf continuation", "Soft\\\r\nware", "Software"},
		{"unknown escape keeps char", `\q`, "q"},
		{"trailing backslash", `end\`, `end\`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, unescapePDFString(tc.in))
		})
	}
}

func TestPDFLiteralScanRecoversProse(t *testing.T) {
	data := pdfWithContent("(John Smith) Tj 0 -14 Td (john.smith@example.com) Tj 0 -14 Td (Senior Software Engineer at Acme) Tj")
	res := New().Extract(NewDocument(data, MediaTypePDF, "cv.pdf"))

	require.False(t, res.Degraded, res.Text)
	assert.Equal(t, "pdf_literal_scan", res.Strategy)
	assert.Equal(t, "John Smith\njohn.smith@example.com\nSenior Software Engineer at Acme", res.Text)
}

func TestPDFOperatorScanJoinsKernedArrays(t *testing.T) {
	content := strings.Join([]string{
		"[(Jo)(hn)-300(Sm)(it)(h)] TJ",
		"[(Da)(ta)-300(En)(gi)(ne)(er)] TJ",
		"[(Py)(th)(on)-300(Go)(la)(ng)-300(Ka)(fk)(a)] TJ",
		"[(Be)(rl)(in)-300(Ge)(rm)(an)(y)] TJ",
	}, "\n")
	res := New().Extract(NewDocument(pdfWithContent(content), MediaTypePDF, "kerned.pdf"))

	require.False(t, res.Degraded, res.Text)
	assert.Equal(t, "pdf_operator_scan", res.Strategy)
	assert.Equal(t, "John Smith\nData Engineer\nPython Golang Kafka\nBerlin Germany", res.Text)
}

func TestPDFPatternScanFindsContactShapes(t *testing.T) {
	data := []byte("%PDF-1.4\n<< /Author <4A6F> >>\nstream\n\x9c\x01 Alice Wong \x02 alice.wong@example.com " +
		"wa.me/15551234567 https://alice.dev \x03\nendstream\n%%EOF\n")
	res := New().Extract(NewDocument(data, MediaTypePDF, "binary.pdf"))

	require.False(t, res.Degraded, res.Text)
	assert.Equal(t, "pdf_pattern_scan", res.Strategy)
	for _, want := range []string{"Alice Wong", "alice.wong@example.com", "wa.me/15551234567", "https://alice.dev"} {
		assert.Contains(t, res.Text, want)
	}
}

func TestCleanPDFTextStripsSyntax(t *testing.T) {
	in := "%PDF-1.7\n% comment line\n3 0 obj\n<< /Type /Font >>\nendobj\nJane   Doe\n\n\nstartxref trailer Backend Developer\x00\n%%EOF"
	out := cleanPDFText(in)

	assert.Equal(t, "Jane Doe\nBackend Developer", out)
}

func TestDocxXMLScanOnRawXML(t *testing.T) {
	xml := `<w:document><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">R&amp;D </w:t></w:r><w:r><w:tab/><w:t>Engineer &lt;Go&gt;</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	res := New().Extract(NewDocument([]byte(xml), MediaTypeDOCX, "cv.docx"))

	assert.Equal(t, "docx_xml_scan", res.Strategy)
	assert.Equal(t, "Jane Doe\nR&D Engineer <Go>", res.Text)
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxPackageIsOpened(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Alice Wong</w:t></w:r></w:p><w:p><w:r><w:t>Skills: Go, SQL</w:t></w:r></w:p>`)
	doc := NewDocument(data, "application/zip", "alice.docx")

	require.Equal(t, MediaTypeDOCX, doc.MediaType)
	res := New().Extract(doc)
	assert.Equal(t, "docx_xml_scan", res.Strategy)
	assert.Equal(t, "Alice Wong\nSkills: Go, SQL", res.Text)
}

func TestDocxWithoutRunsFallsBackToRawWindow(t *testing.T) {
	in := "plain bytes that are not word xml"
	res := New().Extract(NewDocument([]byte(in), MediaTypeDOCX, "odd.docx"))

	assert.Equal(t, "raw_byte_window", res.Strategy)
	assert.Equal(t, in, res.Text)
}

func TestDocxRawWindowDropsControlBytes(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	res := New().Extract(NewDocument(buf.Bytes(), MediaTypeDOCX, "empty.docx"))

	assert.Equal(t, "raw_byte_window", res.Strategy)
	assert.Contains(t, res.Text, "word/document.xml")
	assert.NotContains(t, res.Text, "\x00")
	for _, r := range res.Text {
		assert.False(t, r < 0x20 && r != '\n' && r != '\t', "control rune %q", r)
	}
}

func TestRawByteWindowIsBounded(t *testing.T) {
	data := bytes.Repeat([]byte("a"), rawWindowBytes+500)
	out := RawByteWindow{}.Recover(Document{Data: data})

	assert.Len(t, out, rawWindowBytes)
}

func TestLegacyDOC(t *testing.T) {
	short := New().Extract(NewDocument([]byte("\xd0\xcf\x11\xe0 tiny"), MediaTypeDOC, "old.doc"))
	require.True(t, short.Degraded)
	assert.Contains(t, short.Text, "[DOC text extraction incomplete]")

	prose := strings.Repeat("Experienced accountant with audit background. ", 4)
	long := New().Extract(NewDocument([]byte("\xd0\xcf\x11\xe0\x00\x00"+prose), MediaTypeDOC, "old.doc"))
	require.False(t, long.Degraded)
	assert.Contains(t, long.Text, "Experienced accountant")
}

func TestUnsupportedTypeYieldsPlaceholder(t *testing.T) {
	res := New().Extract(NewDocument([]byte{0x89, 'P', 'N', 'G'}, "image/png", "photo.png"))

	require.True(t, res.Degraded)
	assert.Contains(t, res.Text, "photo.png")
	assert.Contains(t, res.Text, "image/png")
	assert.Contains(t, res.Text, MediaTypeDOCX)
}

func TestExtractNeverPanicsOnGarbage(t *testing.T) {
	garbage := []byte("%PDF-1.4\n(((\\\x00\xff)) [ ( ] TJ startxref\n-1\n%%EOF")
	for _, mt := range SupportedMediaTypes {
		assert.NotPanics(t, func() {
			New().Extract(NewDocument(garbage, mt, "x"))
		}, mt)
	}
}

func TestNormalizeMediaType(t *testing.T) {
	docx := buildDocx(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	cases := []struct {
		name, declared, file string
		data                 []byte
		want                 string
	}{
		{"params stripped", "Text/Plain; charset=utf-8", "a.txt", nil, MediaTypeText},
		{"zip with word body", "application/zip", "upload.bin", docx, MediaTypeDOCX},
		{"octet by extension", "application/octet-stream", "cv.pdf", nil, MediaTypePDF},
		{"empty by magic", "", "blob", []byte("%PDF-1.5 ..."), MediaTypePDF},
		{"empty docx sniff", "", "blob", docx, MediaTypeDOCX},
		{"unknown kept", "image/png", "a.png", nil, "image/png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeMediaType(tc.declared, tc.file, tc.data))
		})
	}
}

func TestQuickText(t *testing.T) {
	pdf := pdfWithContent("(Maria Garcia) Tj (Product Designer) Tj")
	assert.Equal(t, "Maria Garcia\nProduct Designer", QuickText(NewDocument(pdf, MediaTypePDF, "m.pdf")))
	assert.Equal(t, "", QuickText(NewDocument([]byte("x"), "image/png", "m.png")))
	assert.Equal(t, "hello", QuickText(NewDocument([]byte("hello"), MediaTypeText, "m.txt")))
}
