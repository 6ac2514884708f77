package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
)

const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
	MediaTypeDOC  = "application/msword"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SupportedMediaTypes lists the media types with a recovery strategy.
var SupportedMediaTypes = []string{MediaTypeText, MediaTypePDF, MediaTypeDOC, MediaTypeDOCX}

// Document is an uploaded file held in memory for a single extraction.
type Document struct {
	Data      []byte
	MediaType string
	FileName  string
	Size      int64
}

// NewDocument builds a Document, normalizing the declared media type.
func NewDocument(data []byte, mediaType, fileName string) Document {
	return Document{
		Data:      data,
		MediaType: NormalizeMediaType(mediaType, fileName, data),
		FileName:  fileName,
		Size:      int64(len(data)),
	}
}

// IsSupported reports whether the media type has a recovery strategy.
func IsSupported(mediaType string) bool {
	for _, mt := range SupportedMediaTypes {
		if mt == mediaType {
			return true
		}
	}
	return false
}

// NormalizeMediaType strips parameters and resolves generic container types
// (zip, octet-stream, empty) using the zip contents or the file extension.
func NormalizeMediaType(mediaType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	switch clean {
	case "application/zip", "application/x-zip-compressed":
		if isDocxPackage(data) {
			return MediaTypeDOCX
		}
		if byExt := mediaTypeFromExt(fileName); byExt == MediaTypeDOCX {
			return byExt
		}
		return clean
	case "", "application/octet-stream", "binary/octet-stream":
		if byExt := mediaTypeFromExt(fileName); byExt != "" {
			return byExt
		}
		if isDocxPackage(data) {
			return MediaTypeDOCX
		}
		if bytes.HasPrefix(data, []byte("%PDF-")) {
			return MediaTypePDF
		}
		return clean
	default:
		return clean
	}
}

func mediaTypeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt":
		return MediaTypeText
	case ".pdf":
		return MediaTypePDF
	case ".doc":
		return MediaTypeDOC
	case ".docx":
		return MediaTypeDOCX
	default:
		return ""
	}
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

func isDocxPackage(data []byte) bool {
	if !isZip(data) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
