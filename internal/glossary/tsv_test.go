package glossary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/termbase/internal/niad"
)

func TestWriteTSV_RoundTrip(t *testing.T) {
	records := []niad.Record{
		{TermJA: "アウトカム", TermEN: "Outcome", DetailJA: "教育の成果。 学習成果とも言う。", DetailEN: "Results of education.", SourceURL: "https://niadqe.jp/glossary/1001/"},
		{TermJA: "内部質保証", DetailJA: "大学が自らの責任で質を保証すること。", SourceURL: "https://niadqe.jp/glossary/1003/"},
	}

	fs := afero.NewMemMapFs()
	path := filepath.Join("output", "niad_glossary.tsv")
	require.NoError(t, WriteTSV(fs, path, RecordRows(records)))

	contents, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t,
		"JA\tEN\tDETAILS_JA\tDETAILS_EN\tURL\n"+
			"アウトカム\tOutcome\t教育の成果。 学習成果とも言う。\tResults of education.\thttps://niadqe.jp/glossary/1001/\n"+
			"内部質保証\t\t大学が自らの責任で質を保証すること。\t\thttps://niadqe.jp/glossary/1003/\n",
		string(contents))

	rows, err := ReadTSV(fs, path)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, ExternalHeader, rows[0])
	for i, r := range records {
		assert.Equal(t, Row{r.TermJA, r.TermEN, r.DetailJA, r.DetailEN, r.SourceURL}, rows[i+1])
	}
}

func TestWriteTSV_SanitizesFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteTSV(fs, "merged.tsv", []Row{{"改行\nあり", "tab\there", "JA", "EN"}}))

	rows, err := ReadTSV(fs, "merged.tsv")
	require.NoError(t, err)
	assert.Equal(t, []Row{{"改行 あり", "tab here", "JA", "EN"}}, rows)
}

func TestWriteTSV_NoPartialFileOnFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	path := filepath.Join("/", "output", "merged.tsv")
	require.NoError(t, base.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(base, path, []byte("previous\n"), 0644))
	fs := &failingRenameFs{Fs: base}

	err := WriteTSV(fs, path, []Row{{"猫", "cat", "JA", "EN"}})
	require.Error(t, err)

	contents, readErr := afero.ReadFile(base, path)
	require.NoError(t, readErr)
	assert.Equal(t, "previous\n", string(contents))

	entries, readErr := afero.ReadDir(base, filepath.Dir(path))
	require.NoError(t, readErr)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "leftover temp file %s", entry.Name())
	}
}

type failingRenameFs struct {
	afero.Fs
}

func (fs *failingRenameFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errors.New("disk full")}
}

func TestParseTSV(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Row
	}{
		{name: "empty", text: "", want: nil},
		{name: "no trailing newline", text: "a\tb\nc\td", want: []Row{{"a", "b"}, {"c", "d"}}},
		{name: "crlf and blank lines", text: "a\tb\r\n\r\nc\t\r\n", want: []Row{{"a", "b"}, {"c", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTSV(tt.text))
		})
	}
}

func TestReadTSV_MissingFile(t *testing.T) {
	_, err := ReadTSV(afero.NewMemMapFs(), "missing.tsv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLSink_WriteAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewYAMLSink(fs, filepath.Join("output", "merged_glossary.yml"))
	require.NoError(t, sink.WriteAll([]Row{
		{"猫", "cat", "JA", "EN"},
		{"犬", "dog", "JA", "EN"},
	}))

	contents, err := afero.ReadFile(fs, filepath.Join("output", "merged_glossary.yml"))
	require.NoError(t, err)
	assert.Equal(t, `- source_term: 猫
  target_term: cat
  source_lang: JA
  target_lang: EN
- source_term: 犬
  target_term: dog
  source_lang: JA
  target_lang: EN
`, string(contents))
}

func TestYAMLSink_WriteAll_NoPartialFileOnFailure(t *testing.T) {
	path := filepath.Join("/", "output", "merged_glossary.yml")
	rows := []Row{{"猫", "cat", "JA", "EN"}}

	tests := []struct {
		name string
		fs   func(base afero.Fs) afero.Fs
	}{
		{
			name: "rename fails",
			fs:   func(base afero.Fs) afero.Fs { return &failingRenameFs{Fs: base} },
		},
		{
			name: "write fails",
			fs:   func(base afero.Fs) afero.Fs { return &failingWriteFs{Fs: base} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := afero.NewMemMapFs()
			require.NoError(t, base.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, afero.WriteFile(base, path, []byte("previous\n"), 0644))

			err := NewYAMLSink(tt.fs(base), path).WriteAll(rows)
			require.Error(t, err)

			contents, readErr := afero.ReadFile(base, path)
			require.NoError(t, readErr)
			assert.Equal(t, "previous\n", string(contents))

			entries, readErr := afero.ReadDir(base, filepath.Dir(path))
			require.NoError(t, readErr)
			assert.Len(t, entries, 1)
		})
	}
}

func TestWriteTSV_WriteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	path := filepath.Join("/", "output", "merged.tsv")

	err := WriteTSV(&failingWriteFs{Fs: base}, path, []Row{{"猫", "cat", "JA", "EN"}})
	require.Error(t, err)

	entries, readErr := afero.ReadDir(base, filepath.Dir(path))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

// failingWriteFs opens files whose writes always fail.
type failingWriteFs struct {
	afero.Fs
}

func (fs *failingWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &failingWriteFile{File: f}, nil
}

type failingWriteFile struct {
	afero.File
}

func (f *failingWriteFile) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func (f *failingWriteFile) WriteString(s string) (int, error) {
	return 0, errors.New("disk full")
}
