package glossary

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// YAMLSink writes the merged glossary as a YAML list of term pairs.
type YAMLSink struct {
	fs   afero.Fs
	path string
}

func NewYAMLSink(fs afero.Fs, path string) *YAMLSink {
	return &YAMLSink{fs: fs, path: path}
}

func (s *YAMLSink) WriteAll(rows []Row) error {
	entries := make([]MergedRow, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, MergedRowOf(row))
	}

	return writeFileAtomically(s.fs, s.path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("enc.Encode > %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("enc.Close > %w", err)
		}
		return nil
	})
}
