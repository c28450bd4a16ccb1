package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateDatasetFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "valid csv file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "train.csv")
				require.NoError(t, os.WriteFile(file, []byte("datetime\n"), 0644))
				return file
			},
		},
		{
			name: "upper case extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "TRAIN.CSV")
				require.NoError(t, os.WriteFile(file, []byte("datetime\n"), 0644))
				return file
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "train.txt")
				require.NoError(t, os.WriteFile(file, []byte("datetime\n"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "not a CSV file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())

			err := validator.ValidateDatasetFile(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "nested", "dir")
	validator := NewFileValidator(nil)

	require.NoError(t, validator.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "probe file is removed")
}

func TestFileValidator_ReportFormat(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name          string
		path          string
		want          string
		errorContains string
	}{
		{"xlsx", filepath.Join(base, "report.xlsx"), FormatXLSX, ""},
		{"csv in new directory", filepath.Join(base, "out", "report.CSV"), FormatCSV, ""},
		{"unsupported extension", filepath.Join(base, "report.pdf"), "", "unsupported report extension"},
		{"no extension", filepath.Join(base, "report"), "", "unsupported report extension"},
		{"temporary excel file", filepath.Join(base, "~$report.xlsx"), "", "temporary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFileValidator(nil).ReportFormat(tt.path)

			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
