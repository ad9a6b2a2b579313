package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

const maxFilenameLength = 200

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFilename strips characters that are invalid on common
// filesystems and bounds the result length, preserving the extension.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(filenameReplacer.Replace(name))
	name = strings.Trim(name, ". ")
	if name == "" {
		return "untitled"
	}
	if len(name) <= maxFilenameLength {
		return name
	}
	ext := filepath.Ext(name)
	base := name[:maxFilenameLength-len(ext)]
	return base + ext
}

// AvailableFilename returns a filename under dir that does not collide
// with an existing file, appending " (n)" before the extension as needed.
func AvailableFilename(dir, filename string) string {
	if !fileExists(filepath.Join(dir, filename)) {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for n := 1; n <= 100; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !fileExists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
	// pathological collision count, fall back to a timestamp suffix
	return fmt.Sprintf("%s (%d)%s", base, time.Now().Unix(), ext)
}

// EnsureDir creates path and any missing parents
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return domain.WrapError(domain.KindFilesystem,
			fmt.Sprintf("cannot create directory %s", path), err)
	}
	return nil
}

// ValidateOutputDir checks that path exists, is a directory and is writable
func ValidateOutputDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.NewError(domain.KindInvalidInput, "output directory is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.WrapError(domain.KindInvalidInput,
			fmt.Sprintf("output directory %s does not exist", path), err)
	}
	if !info.IsDir() {
		return domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("%s is not a directory", path))
	}
	probe, err := os.CreateTemp(path, ".mvd-probe-*")
	if err != nil {
		return domain.WrapError(domain.KindInvalidInput,
			fmt.Sprintf("output directory %s is not writable", path), err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
