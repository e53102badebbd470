package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls   []string
	outputs map[string][]byte
	fail    map[string]error
	// pdftoppm side effect: files to create when invoked
	renderPages []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	if err, ok := s.fail[name]; ok {
		return nil, []byte("boom"), err
	}
	if name == "pdftoppm" {
		prefix := args[len(args)-1]
		for _, p := range s.renderPages {
			if err := os.WriteFile(prefix+"-"+p+".png", []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
	}
	return s.outputs[name], nil, nil
}

func TestExtractUsesEmbeddedText(t *testing.T) {
	r := &stubRunner{outputs: map[string][]byte{
		"pdftotext": []byte("Rechnung Nr. 2024-001\fSeite zwei mit noch mehr Inhalt dahinter"),
	}}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	res, err := e.Extract(context.Background(), "/inbox/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Rechnung")
	assert.Equal(t, []string{"pdftotext"}, r.calls)
}

func TestExtractFallsBackToOCR(t *testing.T) {
	r := &stubRunner{
		outputs: map[string][]byte{
			"pdftotext": []byte("  "), // scanned PDF, no text layer
			"tesseract": []byte("Kantonsspital Baden Austrittsbericht vom 3. Mai"),
		},
		renderPages: []string{"1"},
	}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	res, err := e.Extract(context.Background(), "/inbox/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, res.Text, "Kantonsspital")
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract"}, r.calls)
}

func TestExtractOCRMaxPages(t *testing.T) {
	r := &stubRunner{
		outputs: map[string][]byte{
			"pdftotext": []byte(""),
			"tesseract": []byte("Seite"),
		},
		renderPages: []string{"1", "2", "3"},
	}
	e := NewExtractor(Config{MaxPages: 2}, nil)
	e.runner = r

	res, err := e.Extract(context.Background(), "/inbox/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "photo.jpg"))
	assert.Error(t, err)
}

func TestExtractOCRFailure(t *testing.T) {
	r := &stubRunner{
		outputs: map[string][]byte{"pdftotext": []byte("")},
		fail:    map[string]error{"pdftoppm": errors.New("exit 1")},
	}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	_, err := e.Extract(context.Background(), "/inbox/scan.pdf")
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	in := "Zeile eins  \r\n\r\n\r\n\r\nZeile\tzwei   mit    Raum  "
	assert.Equal(t, "Zeile eins\n\nZeile zwei mit Raum", NormalizeText(in))
}
