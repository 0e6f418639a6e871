package exporter

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// ContentType is the MIME type of a .docx package.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Format selects how a finished document is handed to the caller. Every
// format carries the same package bytes.
type Format string

const (
	FormatBuffer Format = "buffer"
	FormatBase64 Format = "base64"
	FormatStream Format = "stream"
	FormatBlob   Format = "blob"
)

// ParseFormat accepts the format names plus "docx" as an alias for buffer.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "docx", "buffer", "binary":
		return FormatBuffer, nil
	case "base64":
		return FormatBase64, nil
	case "stream":
		return FormatStream, nil
	case "blob":
		return FormatBlob, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Document is a finished .docx package.
type Document struct {
	data []byte
}

func (d *Document) Bytes() []byte { return d.data }

func (d *Document) Len() int { return len(d.data) }

func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.data)
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// SHA256 is the hex digest of the package, used as an entity tag.
func (d *Document) SHA256() string {
	sum := sha256.Sum256(d.data)
	return hex.EncodeToString(sum[:])
}

// Blob is an opaque handle to the package with its content type.
type Blob struct {
	ContentType string
	Size        int64
	data        []byte
}

// Open returns a fresh reader over the blob.
func (b Blob) Open() io.ReadSeeker { return bytes.NewReader(b.data) }

func (d *Document) Blob() Blob {
	return Blob{ContentType: ContentType, Size: int64(len(d.data)), data: d.data}
}

// Encode writes the document to w in the given format. Base64 writes the
// encoded text; every other format writes the raw package.
func (d *Document) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatBase64:
		enc := base64.NewEncoder(base64.StdEncoding, w)
		if _, err := enc.Write(d.data); err != nil {
			return err
		}
		return enc.Close()
	case FormatBuffer, FormatStream, FormatBlob:
		_, err := d.WriteTo(w)
		return err
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
