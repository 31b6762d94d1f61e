package security

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lower-cased file extension
	DetectedMIME string // MIME type sniffed from content
	Error        string // Error message if validation failed
}

// Magic byte signatures for allowed file types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".webp": {{0x52, 0x49, 0x46, 0x46}},                         // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// MIME types accepted per extension. application/octet-stream is never accepted.
var extensionMIMEs = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".webp": {"image/webp"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// Extension sets for the candidate document slots
var (
	ResumeExtensions      = []string{".pdf", ".doc", ".docx"}
	CertificateExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".webp"}
)

// ValidateFile performs 3-layer file validation:
// 1. Extension whitelist (allowed)
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type must belong to the extension
func ValidateFile(filename string, data []byte, allowed []string) FileValidationResult {
	result := FileValidationResult{}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	if !contains(allowed, ext) {
		result.Error = "file extension not allowed: " + ext + " (allowed: " + strings.Join(allowed, ", ") + ")"
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	if i := strings.Index(result.DetectedMIME, ";"); i >= 0 {
		result.DetectedMIME = result.DetectedMIME[:i]
	}

	if !mimeMatches(ext, detected) {
		result.Error = "file type not allowed: " + result.DetectedMIME
		return result
	}

	result.Valid = true
	return result
}

func mimeMatches(ext string, detected *mimetype.MIME) bool {
	for _, m := range extensionMIMEs[ext] {
		if detected.Is(m) {
			return true
		}
	}
	// Word documents sniff as their container format in older detector tables
	for p := detected.Parent(); p != nil; p = p.Parent() {
		for _, m := range extensionMIMEs[ext] {
			if p.Is(m) {
				return true
			}
		}
	}
	return false
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// SanitizeFilename strips any path and control characters from a client-supplied name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7F || r == '"' {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" || out == "." || out == "/" {
		return "document"
	}
	if len(out) > 200 {
		out = out[len(out)-200:]
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
