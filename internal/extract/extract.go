// Package extract recovers best-effort plain text from uploaded CV documents.
//
// Each media type owns an ordered list of recovery strategies. A strategy runs
// only when the previous ones produced too little text, and exhausting the list
// yields a diagnostic placeholder instead of an error.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// minPDFContent is the length a PDF tier must reach to stop the chain.
	minPDFContent = 50
	// minCleanedPDF is the length cleaned PDF text must keep to be returned.
	minCleanedPDF = 30
	// minDOCText is the apparent text a legacy DOC window must hold.
	minDOCText = 100
	// rawWindowBytes bounds the raw byte window used by DOC/DOCX fallbacks.
	rawWindowBytes = 20000
)

// Strategy is one text recovery technique.
type Strategy interface {
	Name() string
	Recover(doc Document) string
}

// Result is the outcome of an extraction.
type Result struct {
	Text     string
	Strategy string
	// Degraded is set when Text is a diagnostic placeholder.
	Degraded bool
}

// Extractor dispatches documents to their media type strategies.
type Extractor struct {
	pdfTiers []Strategy
}

// New returns an Extractor with the default strategy lists.
func New() *Extractor {
	return &Extractor{
		pdfTiers: []Strategy{
			PDFReader{},
			PDFLiteralScan{},
			PDFOperatorScan{},
			PDFPatternScan{},
		},
	}
}

// Extract returns recovered text for doc. It never fails: unsupported types and
// exhausted strategies produce a placeholder describing the file.
func (e *Extractor) Extract(doc Document) Result {
	switch doc.MediaType {
	case MediaTypeText:
		return Result{Text: PlainText{}.Recover(doc), Strategy: PlainText{}.Name()}
	case MediaTypePDF:
		return e.extractPDF(doc)
	case MediaTypeDOCX:
		return extractDOCX(doc)
	case MediaTypeDOC:
		return extractDOC(doc)
	default:
		return Result{Text: unsupportedPlaceholder(doc), Strategy: "placeholder", Degraded: true}
	}
}

func (e *Extractor) extractPDF(doc Document) Result {
	best, bestTier := "", ""
	for _, tier := range e.pdfTiers {
		text := strings.TrimSpace(tier.Recover(doc))
		if utf8.RuneCountInString(text) > utf8.RuneCountInString(best) {
			best, bestTier = text, tier.Name()
		}
		if utf8.RuneCountInString(text) >= minPDFContent {
			break
		}
	}
	if utf8.RuneCountInString(best) < minPDFContent {
		return Result{Text: pdfPlaceholder(doc), Strategy: "placeholder", Degraded: true}
	}
	cleaned := cleanPDFText(best)
	if utf8.RuneCountInString(cleaned) < minCleanedPDF {
		return Result{Text: pdfPlaceholder(doc), Strategy: "placeholder", Degraded: true}
	}
	return Result{Text: cleaned, Strategy: bestTier}
}

func extractDOCX(doc Document) Result {
	if text := (DocxXMLScan{}).Recover(doc); strings.TrimSpace(text) != "" {
		return Result{Text: text, Strategy: DocxXMLScan{}.Name()}
	}
	return Result{Text: RawByteWindow{}.Recover(doc), Strategy: RawByteWindow{}.Name()}
}

func extractDOC(doc Document) Result {
	text := RawByteWindow{}.Recover(doc)
	if utf8.RuneCountInString(text) < minDOCText {
		return Result{Text: docPlaceholder(doc), Strategy: "placeholder", Degraded: true}
	}
	return Result{Text: text, Strategy: RawByteWindow{}.Name()}
}

// QuickText is the reduced recovery used to build AI prompts. It runs a single
// cheap strategy per media type and returns "" rather than a placeholder.
func QuickText(doc Document) string {
	switch doc.MediaType {
	case MediaTypeText:
		return PlainText{}.Recover(doc)
	case MediaTypePDF:
		return strings.TrimSpace(PDFLiteralScan{}.Recover(doc))
	case MediaTypeDOCX:
		return strings.TrimSpace(DocxXMLScan{}.Recover(doc))
	case MediaTypeDOC:
		return RawByteWindow{}.Recover(doc)
	default:
		return ""
	}
}

// PlainText decodes the buffer as UTF-8 unchanged.
type PlainText struct{}

func (PlainText) Name() string { return "plain_text" }

func (PlainText) Recover(doc Document) string { return string(doc.Data) }

func pdfPlaceholder(doc Document) string {
	return fmt.Sprintf("[PDF text extraction incomplete]\nFile: %s\nSize: %d bytes\n"+
		"Only a small amount of readable text could be recovered. The PDF may be scanned or use embedded fonts.\n"+
		"Convert the document to DOCX or plain text and upload it again for better results.",
		doc.FileName, doc.Size)
}

func docPlaceholder(doc Document) string {
	return fmt.Sprintf("[DOC text extraction incomplete]\nFile: %s\nSize: %d bytes\n"+
		"Legacy Word documents are read without a format parser.\n"+
		"Save the document as DOCX or PDF and upload it again for better results.",
		doc.FileName, doc.Size)
}

func unsupportedPlaceholder(doc Document) string {
	return fmt.Sprintf("[Unsupported file type]\nFile: %s\nSize: %d bytes\nType: %s\nSupported types: %s",
		doc.FileName, doc.Size, doc.MediaType, strings.Join(SupportedMediaTypes, ", "))
}
