package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var wordTextRunRe = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)

var xmlEntities = strings.NewReplacer(
	"&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'",
)

// DocxXMLScan reads the text runs of a WordprocessingML body. A zip package
// is opened first; any other buffer is scanned as raw XML.
type DocxXMLScan struct{}

func (DocxXMLScan) Name() string { return "docx_xml_scan" }

func (DocxXMLScan) Recover(doc Document) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	body := string(doc.Data)
	if isZip(doc.Data) {
		xmlBody, err := documentXML(doc.Data)
		if err != nil {
			return ""
		}
		body = xmlBody
	}
	return scanTextRuns(strings.ToValidUTF8(body, ""))
}

// RawByteWindow returns the printable text in the leading bytes of the
// buffer. NUL and other control bytes are dropped.
type RawByteWindow struct{}

func (RawByteWindow) Name() string { return "raw_byte_window" }

func (RawByteWindow) Recover(doc Document) string {
	data := doc.Data
	if len(data) > rawWindowBytes {
		data = data[:rawWindowBytes]
	}
	return apparentText(string(data))
}

// scanTextRuns joins <w:t> runs per paragraph, one paragraph per line.
func scanTextRuns(body string) string {
	var lines []string
	for _, para := range strings.Split(body, "</w:p>") {
		var b strings.Builder
		for _, m := range wordTextRunRe.FindAllStringSubmatch(para, -1) {
			b.WriteString(xmlEntities.Replace(m[1]))
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func documentXML(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		defer r.Close()
		if content := r.Editable().GetContent(); content != "" {
			return content, nil
		}
	}
	return zipEntry(data, "word/document.xml")
}

// zipEntry reads one member directly; packages missing the relationship
// parts the docx reader expects still carry a readable body.
func zipEntry(data []byte, name string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		b, err := io.ReadAll(io.LimitReader(rc, 8<<20))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", errors.New("docx: " + name + " not found")
}
