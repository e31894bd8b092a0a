package glossary

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var fieldSanitizer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "\t", " ")

// WriteTSV writes rows as tab-separated lines. Tabs and line breaks inside a
// field are replaced with spaces so every row survives a split on tabs.
func WriteTSV(fs afero.Fs, path string, rows []Row) error {
	return writeFileAtomically(fs, path, func(w io.Writer) error {
		var sb strings.Builder
		for _, row := range rows {
			for i, field := range row {
				if i > 0 {
					sb.WriteByte('\t')
				}
				sb.WriteString(fieldSanitizer.Replace(field))
			}
			sb.WriteByte('\n')
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return fmt.Errorf("io.WriteString > %w", err)
		}
		return nil
	})
}

// writeFileAtomically writes to a temporary file next to path and renames it
// into place, so a failure never leaves a partially written file behind.
func writeFileAtomically(fs afero.Fs, path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("fs.MkdirAll(%s) > %w", dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("afero.TempFile > %w", err)
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close > %w", err)
	}
	if err := fs.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("fs.Rename(%s) > %w", path, err)
	}
	return nil
}

// ReadTSV reads a file written by WriteTSV.
func ReadTSV(fs afero.Fs, path string) ([]Row, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("afero.ReadFile(%s) > %w", path, err)
	}
	return ParseTSV(string(contents)), nil
}

// ParseTSV splits text into lines and each line on tabs. Blank lines are skipped.
func ParseTSV(text string) []Row {
	var rows []Row
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}
