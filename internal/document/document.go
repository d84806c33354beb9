// Package document turns a user-selected file into the opaque payload sent to
// the generative service.
package document

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/markis/flashdeck/internal/errs"
)

// DefaultMIMEType is used for extensions we do not recognise.
const DefaultMIMEType = "application/octet-stream"

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"html": "text/html",
	"htm":  "text/html",
}

// Document is a source file ready to attach to a request.
type Document struct {
	Filename string
	Data     []byte
	MIMEType string
}

// Empty reports whether there is nothing to send.
func (d *Document) Empty() bool {
	return d == nil || len(d.Data) == 0
}

// MIMEType infers the media type from the file extension.
func MIMEType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return DefaultMIMEType
}

// Load reads path into a Document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, errs.CodeDocumentRead, "could not read file %s", path)
	}
	if len(data) == 0 {
		return nil, errs.New(errs.CodeDocumentRead, "file is empty", errs.Field("path", path))
	}

	name := filepath.Base(path)
	return &Document{
		Filename: name,
		Data:     data,
		MIMEType: MIMEType(name),
	}, nil
}
