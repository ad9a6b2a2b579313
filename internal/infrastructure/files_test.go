package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name passes through", "My Video.mp4", "My Video.mp4"},
		{"slashes replaced", "a/b\\c.mp4", "a_b_c.mp4"},
		{"windows-invalid characters replaced", `what? "time": 10 <now>|.mp4`, "what_ _time__ 10 _now__.mp4"},
		{"trailing dots trimmed", "video...", "video"},
		{"empty falls back", "", "untitled"},
		{"control characters stripped", "a\x00b\tc.mp4", "abc.mp4"},
		{"only invalid falls back", "???", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}

	long := strings.Repeat("x", 300) + ".mp4"
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), 200)
	assert.True(t, strings.HasSuffix(got, ".mp4"))
}

func TestAvailableFilename(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "video.mp4", AvailableFilename(dir, "video.mp4"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "video.mp4"), nil, 0o644))
	assert.Equal(t, "video (1).mp4", AvailableFilename(dir, "video.mp4"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "video (1).mp4"), nil, 0o644))
	assert.Equal(t, "video (2).mp4", AvailableFilename(dir, "video.mp4"))
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, ValidateOutputDir(dir))

	err := ValidateOutputDir("")
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	err = ValidateOutputDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	file := filepath.Join(dir, "a-file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = ValidateOutputDir(file)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	assert.NoError(t, EnsureDir(dir))
}
