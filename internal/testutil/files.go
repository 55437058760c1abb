package testutil

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

// MinimalPDF is enough of a PDF for content sniffing.
const MinimalPDF = "%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF\n"

// WritePDF writes MinimalPDF to dir/name and returns the path.
func WritePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(MinimalPDF), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// MultipartFiles builds a multipart body with one "file" part per name.
func MultipartFiles(t *testing.T, contents map[string][]byte, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write(contents[name])
	}
	writer.Close()
	return body, writer.FormDataContentType()
}
