package logo

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// document is a paged logo container. Only the first page is used.
type document interface {
	PageCount() int
	RenderPage(index int, dpi float64) (image.Image, error)
	Close() error
}

type pdfDocument struct {
	doc *fitz.Document
}

func openPDF(data []byte) (*pdfDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &pdfDocument{doc: doc}, nil
}

func (p *pdfDocument) PageCount() int {
	return p.doc.NumPage()
}

func (p *pdfDocument) RenderPage(index int, dpi float64) (image.Image, error) {
	return p.doc.ImageDPI(index, dpi)
}

func (p *pdfDocument) Close() error {
	return p.doc.Close()
}

// firstPage rasterizes page 0 of doc and closes it.
func firstPage(doc document, dpi float64) (image.Image, error) {
	defer doc.Close()
	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	return doc.RenderPage(0, dpi)
}
