package filetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category Category
		ext      string
	}{
		{"vacation.JPG", Image, "jpg"},
		{"scan.png", Image, "png"},
		{"report.pdf", Document, "pdf"},
		{"notes.txt", Document, "txt"},
		{"clip.mp4", Video, "mp4"},
		{"song.mp3", Audio, "mp3"},
		{"archive.zip", Other, "zip"},
		{"Makefile", Other, ""},
		{"weird.name.docx", Document, "docx"},
	}

	for _, tt := range tests {
		c, ext := FromFilename(tt.name)
		assert.Equal(t, tt.category, c, tt.name)
		assert.Equal(t, tt.ext, ext, tt.name)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, c := range Categories {
		got, err := Parse(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := Parse("Image")
	require.NoError(t, err)
	assert.Equal(t, Image, got)

	_, err = Parse("binary")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}
