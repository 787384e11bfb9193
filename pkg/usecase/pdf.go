package usecase

import (
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
)

// countPages reads the page tree of a PDF. The parser panics on some malformed input,
// so a panic is reported as an error.
func countPages(r io.ReaderAt, size int64) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n = 0
			err = goerr.New("PDF parser panicked", goerr.V("panic", rec))
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to parse PDF")
	}

	return reader.NumPage(), nil
}
