package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
)

// FilePart is an uploaded file forwarded to the backend.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Multipart is a form body; the FormData equivalent of the dashboard forms.
type Multipart struct {
	Fields map[string][]string
	Files  []FilePart
}

func NewMultipart() *Multipart {
	return &Multipart{Fields: make(map[string][]string)}
}

// Set replaces the values of field. Empty values are skipped.
func (m *Multipart) Set(field, value string) *Multipart {
	if value == "" {
		return m
	}
	m.Fields[field] = []string{value}
	return m
}

// Add appends a value to field, used for repeated fields such as image lists.
func (m *Multipart) Add(field, value string) *Multipart {
	m.Fields[field] = append(m.Fields[field], value)
	return m
}

func (m *Multipart) AddFile(f FilePart) *Multipart {
	m.Files = append(m.Files, f)
	return m
}

// encode writes fields in key order, then files in insertion order.
func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range m.Fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
