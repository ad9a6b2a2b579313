package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain word", "yt-dlp", "yt-dlp"},
		{"path", "/usr/local/bin/yt-dlp", "/usr/local/bin/yt-dlp"},
		{"empty", "", "''"},
		{"spaces", "my file.mp4", "'my file.mp4'"},
		{"format expression", "bestvideo[height<=1080]+bestaudio", "'bestvideo[height<=1080]+bestaudio'"},
		{"single quote", "it's", `'it'"'"'s'`},
		{"url with query", "https://example.com/watch?v=abc", "'https://example.com/watch?v=abc'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellEscape(tt.in))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	got := ShellEscapeCommand("yt-dlp", "--newline", "-o", "/tmp/out dir/%(title)s.%(ext)s")
	assert.Equal(t, `yt-dlp --newline -o '/tmp/out dir/%(title)s.%(ext)s'`, got)
}
