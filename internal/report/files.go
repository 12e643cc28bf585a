package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nerrad567/nilmlab/internal/experiment"
)

const filePermissions = 0o640

// Formats selects the artefacts WriteFiles produces.
type Formats struct {
	XLSX bool
	PDF  bool
}

// WriteFiles writes <experiment>_<split>.xlsx and/or .pdf into dir and
// returns the paths written. dir is created when missing.
func WriteFiles(dir string, s Summary, res experiment.Result, formats Formats) ([]string, error) {
	if !formats.XLSX && !formats.PDF {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("report: creating %s: %w", dir, err)
	}

	base := filepath.Join(dir, fmt.Sprintf("%s_%s", s.Experiment, s.Split))
	var written []string
	if formats.XLSX {
		path := base + ".xlsx"
		if err := writeFile(path, func(w io.Writer) error { return WriteXLSX(w, s, res) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if formats.PDF {
		path := base + ".pdf"
		if err := writeFile(path, func(w io.Writer) error { return WriteSummaryPDF(w, s) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return render(f)
}
