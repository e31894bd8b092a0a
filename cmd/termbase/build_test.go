package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/termbase/internal/config"
	"github.com/at-ishikawa/termbase/internal/glossary"
)

func TestPriority_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Priority
		wantErr bool
	}{
		{
			name:  "internal",
			value: "internal",
			want:  PriorityInternal,
		},
		{
			name:  "external",
			value: "external",
			want:  PriorityExternal,
		},
		{
			name:    "invalid value",
			value:   "both",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var priority Priority
			err := priority.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid priority")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, priority)
		})
	}
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "external", PriorityExternal.String())
}

func TestPriority_Type(t *testing.T) {
	priority := PriorityInternal
	assert.Equal(t, "Priority", priority.Type())
}

func TestPriority_OverwriteExternal(t *testing.T) {
	assert.True(t, PriorityInternal.OverwriteExternal())
	assert.False(t, PriorityExternal.OverwriteExternal())
}

func TestNewBuildCommand(t *testing.T) {
	cmd := newBuildCommand()

	assert.Equal(t, "build", cmd.Use)
	for _, name := range []string{"priority", "pdf", "yaml", "sync-db"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "internal", cmd.Flags().Lookup("priority").DefValue)
}

func TestBuildCommand_InvalidConfig(t *testing.T) {
	cfgPath := setupBrokenConfigFile(t)

	_, _, err := executeCommand(t, "--config", cfgPath, "build")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not be read")
}

func TestBuildCommand_InvalidPriority(t *testing.T) {
	cfgPath, _ := setupConfigFile(t)

	_, _, err := executeCommand(t, "--config", cfgPath, "build", "--priority", "both")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid priority")
}

type fakeRepository struct {
	upserted  []glossary.MergedRow
	upsertErr error
	closed    bool
}

func (r *fakeRepository) FindAll(ctx context.Context) ([]glossary.MergedRow, error) {
	return r.upserted, nil
}

func (r *fakeRepository) UpsertAll(ctx context.Context, rows []glossary.MergedRow) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = rows
	return nil
}

func (r *fakeRepository) Close() error {
	r.closed = true
	return nil
}

func TestExporter_Export(t *testing.T) {
	cfg := &config.Config{
		Output: config.OutputConfig{
			Directory:      "/output",
			MergedGlossary: "merged_glossary.tsv",
		},
	}
	// Without an internal glossary the merged rows keep the external columns.
	rows := []glossary.Row{
		{"猫", "cat", "JA", "EN"},
		{"犬", "dog", "イヌ", "A dog", "https://niadqe.jp/glossary/2/"},
	}
	wantRows := []glossary.MergedRow{
		glossary.NewMergedRow("猫", "cat"),
		glossary.NewMergedRow("犬", "dog"),
	}
	upsertErr := errors.New("connection refused")

	tests := []struct {
		name         string
		opts         buildOptions
		repo         *fakeRepository
		wantYAML     bool
		wantUpserted []glossary.MergedRow
		wantErr      error
		wantOutput   string
	}{
		{
			name:       "no exports",
			opts:       buildOptions{},
			repo:       &fakeRepository{},
			wantOutput: "",
		},
		{
			name:       "yaml next to the merged glossary",
			opts:       buildOptions{yaml: true},
			repo:       &fakeRepository{},
			wantYAML:   true,
			wantOutput: "YAML glossary: /output/merged_glossary.yaml\n",
		},
		{
			name:         "sync to the database",
			opts:         buildOptions{syncDB: true},
			repo:         &fakeRepository{},
			wantUpserted: wantRows,
			wantOutput:   "Synced 2 terms to the database\n",
		},
		{
			name:    "database failure",
			opts:    buildOptions{syncDB: true},
			repo:    &fakeRepository{upsertErr: upsertErr},
			wantErr: upsertErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			var out bytes.Buffer
			e := &exporter{
				fs:  fs,
				out: &out,
				openRepository: func(ctx context.Context, cfg config.DatabaseConfig) (glossary.TermRepository, io.Closer, error) {
					return tt.repo, tt.repo, nil
				},
			}

			err := e.export(context.Background(), cfg, tt.opts, rows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, tt.repo.closed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, out.String())
			assert.Equal(t, tt.wantUpserted, tt.repo.upserted)
			if tt.opts.syncDB {
				assert.True(t, tt.repo.closed)
			}

			exists, err := afero.Exists(fs, "/output/merged_glossary.yaml")
			require.NoError(t, err)
			assert.Equal(t, tt.wantYAML, exists)
			if tt.wantYAML {
				contents, err := afero.ReadFile(fs, "/output/merged_glossary.yaml")
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
		})
	}
}

