package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://example.com/video",
		"  https://vimeo.com/12345  ",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateURL(u), u)
	}

	invalid := []string{
		"",
		"   ",
		"not a url",
		"ftp://example.com/file",
		"youtube.com/watch?v=abc",
		"https://",
	}
	for _, u := range invalid {
		err := ValidateURL(u)
		assert.Error(t, err, u)
		assert.Equal(t, KindInvalidInput, KindOf(err), u)
	}
}

func TestNewQueueItem(t *testing.T) {
	item := NewQueueItem("  https://example.com/v  ")

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "https://example.com/v", item.URL)
	assert.Equal(t, TitleLoading, item.Title)
	assert.False(t, item.CreatedAt.IsZero())

	other := NewQueueItem("https://example.com/v")
	assert.NotEqual(t, item.ID, other.ID)
}

func TestDisplayTitle(t *testing.T) {
	item := NewQueueItem("https://example.com/v")
	assert.Equal(t, "https://example.com/v", item.DisplayTitle())

	item.Title = "A Real Title"
	assert.Equal(t, "A Real Title", item.DisplayTitle())

	item.Title = ""
	assert.Equal(t, "https://example.com/v", item.DisplayTitle())
}
