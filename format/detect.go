// Package format provides file format detection for the filetomd toolkit.
package format

import (
	"archive/zip"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) presentation.
	PPTX
	// HTML indicates an HTML document.
	HTML
	// CSV indicates a comma-separated values file.
	CSV
	// MSG indicates an Outlook (.msg) email message.
	MSG
	// Image indicates a raster image (PNG, JPEG, GIF, BMP, TIFF, WebP).
	Image
	// Video indicates a video container (MP4, AVI, MKV, MOV, WebM, WMV).
	Video
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case HTML:
		return "HTML"
	case CSV:
		return "CSV"
	case MSG:
		return "MSG"
	case Image:
		return "Image"
	case Video:
		return "Video"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case HTML:
		return ".html"
	case CSV:
		return ".csv"
	case MSG:
		return ".msg"
	case Image:
		return ".png"
	case Video:
		return ".mp4"
	default:
		return ""
	}
}

// Parse returns the format named by s ("pdf", "docx", "image", ...),
// matching case-insensitively against the String values. Unrecognized
// names return Unknown.
func Parse(s string) Format {
	switch strings.ToLower(s) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "xlsx":
		return XLSX
	case "pptx":
		return PPTX
	case "html":
		return HTML
	case "csv":
		return CSV
	case "msg":
		return MSG
	case "image":
		return Image
	case "video":
		return Video
	default:
		return Unknown
	}
}

// Detect determines file format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".html", ".htm":
		return HTML
	case ".csv":
		return CSV
	case ".msg":
		return MSG
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp":
		return Image
	case ".mp4", ".avi", ".mkv", ".mov", ".webm", ".wmv":
		return Video
	default:
		return Unknown
	}
}

// Extensions returns every file extension the toolkit recognizes, in a
// stable order suitable for CLI help output.
func Extensions() []string {
	return []string{
		".pdf", ".html", ".htm", ".docx", ".xlsx", ".msg", ".csv", ".pptx",
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp",
		".mp4", ".avi", ".mkv", ".mov", ".webm", ".wmv",
	}
}

// DetectFromMagic checks leading magic bytes to determine format. It is more
// reliable than extension-based detection but cannot distinguish the
// ZIP-based Office formats from each other; use DetectFromReader for that.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// PDF magic: %PDF
	if data[0] == '%' && data[1] == 'P' && data[2] == 'D' && data[3] == 'F' {
		return PDF
	}

	// Compound File Binary magic, the container for Outlook .msg files.
	if len(data) >= 8 && data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0 &&
		data[4] == 0xA1 && data[5] == 0xB1 && data[6] == 0x1A && data[7] == 0xE1 {
		return MSG
	}

	if f := detectImageMagic(data); f != Unknown {
		return f
	}

	// ZIP magic (PK\x03\x04): could be DOCX, XLSX, or PPTX. The caller
	// needs DetectFromReader to look inside the archive.
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// detectImageMagic recognizes the common raster image signatures.
func detectImageMagic(data []byte) Format {
	switch {
	case len(data) >= 8 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return Image
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return Image // JPEG
	case len(data) >= 6 && string(data[:4]) == "GIF8":
		return Image
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return Image // BMP
	case len(data) >= 4 && (string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*"):
		return Image // TIFF
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return Image
	default:
		return Unknown
	}
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML.
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// DetectFromReader inspects content to determine format. Unlike
// DetectFromMagic it can distinguish the ZIP-based Office formats by
// looking at the archive's inner paths.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}

	if f := DetectFromMagic(magic); f != Unknown {
		return f, nil
	}

	return Unknown, nil
}

// detectZIPFormat inspects a ZIP archive to determine which Office Open XML
// format it holds.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			continue
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}

	return Unknown, nil
}
