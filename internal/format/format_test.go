package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{"zero", 0, "0.00 B"},
		{"below one kilobyte", 1023, "1023.00 B"},
		{"exactly one kilobyte", 1024, "1.00 KB"},
		{"one and a half kilobytes", 1536, "1.50 KB"},
		{"one megabyte", 1048576, "1.00 MB"},
		{"ten megabytes", 10485760, "10.00 MB"},
		{"one gigabyte", 1 << 30, "1.00 GB"},
		{"one terabyte", 1 << 40, "1.00 TB"},
		{"one petabyte", 1 << 50, "1.00 PB"},
		{"one exabyte", 1 << 60, "1.00 EB"},
		{"negative clamps to zero", -500, "0.00 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bytes(tt.size))
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "00:00"},
		{"under a minute", 59, "00:59"},
		{"over a minute", 61, "01:01"},
		{"just under an hour", 3599, "59:59"},
		{"exactly an hour", 3600, "01:00:00"},
		{"over an hour", 3661, "01:01:01"},
		{"many hours", 36000, "10:00:00"},
		{"unknown", -1, "--:--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Duration(tt.seconds))
		})
	}
}
