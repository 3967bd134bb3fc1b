// Package share hands rendered reports to the places a user shares them:
// the terminal, an export directory, a message broker or a spreadsheet.
package share

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"budgetbook/internal/log"
	"budgetbook/internal/storage"
)

// Presenter shares a report. Present does not report failure to the
// caller; implementations log it.
type Presenter interface {
	Present(ctx context.Context, text, title string)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, text, title string)

func (f PresenterFunc) Present(ctx context.Context, text, title string) {
	f(ctx, text, title)
}

// WriterPresenter prints reports to a writer, usually stdout.
type WriterPresenter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *log.Logger
}

func NewWriterPresenter(w io.Writer, logger *log.Logger) *WriterPresenter {
	return &WriterPresenter{w: w, logger: componentLogger(logger)}
}

func (p *WriterPresenter) Present(ctx context.Context, text, title string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rule := strings.Repeat("=", len(title))
	if _, err := fmt.Fprintf(p.w, "%s\n%s\n%s\n", title, rule, text); err != nil {
		p.logger.Failure(ctx, "Failed to print report", err, log.FieldTitle, title, log.FieldTarget, "stdout")
	}
}

// FilePresenter saves each report as a text file named after its title.
type FilePresenter struct {
	dir    string
	logger *log.Logger
}

func NewFilePresenter(dir string, logger *log.Logger) *FilePresenter {
	return &FilePresenter{dir: dir, logger: componentLogger(logger)}
}

func (p *FilePresenter) Present(ctx context.Context, text, title string) {
	path, err := WriteReportFile(ctx, p.dir, title, text)
	if err != nil {
		p.logger.Failure(ctx, "Failed to export report", err, log.FieldTitle, title, log.FieldTarget, "file")
		return
	}
	p.logger.InfoContext(ctx, "Exported report", log.FieldTitle, title, log.FieldPath, path)
}

// ReportPath is the file a report titled title is saved to inside dir.
func ReportPath(dir, title string) string {
	return filepath.Join(dir, Slug(title)+".txt")
}

// WriteReportFile saves text to ReportPath(dir, title), replacing any
// earlier export of the same title.
func WriteReportFile(ctx context.Context, dir, title, text string) (string, error) {
	path := ReportPath(dir, title)
	if err := storage.NewFileSink(path).Write(ctx, []byte(text+"\n")); err != nil {
		return "", err
	}
	return path, nil
}

// Slug turns a title into a lower-case file name: letters and digits are
// kept, every other run of characters becomes a single dash.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "report"
	}
	return b.String()
}

// Multi fans a report out to every presenter in order.
func Multi(presenters ...Presenter) Presenter {
	if len(presenters) == 1 {
		return presenters[0]
	}
	return multi(append([]Presenter(nil), presenters...))
}

type multi []Presenter

func (m multi) Present(ctx context.Context, text, title string) {
	for _, p := range m {
		p.Present(ctx, text, title)
	}
}

func componentLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		logger = log.Discard()
	}
	return logger.WithComponent(log.ComponentShare)
}
