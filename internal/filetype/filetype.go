// Package filetype maps file names onto the five fixed storage categories
// used for bucketing and usage accounting
package filetype

import (
	"fmt"
	"path"
	"strings"
)

type Category string

const (
	Image    Category = "image"
	Document Category = "document"
	Video    Category = "video"
	Audio    Category = "audio"
	Other    Category = "other"
)

// Categories lists every valid category in a stable order
var Categories = []Category{Image, Document, Video, Audio, Other}

var extensions = map[string]Category{
	"jpg": Image, "jpeg": Image, "png": Image, "gif": Image, "webp": Image,
	"bmp": Image, "svg": Image, "heic": Image,

	"pdf": Document, "doc": Document, "docx": Document, "txt": Document,
	"xls": Document, "xlsx": Document, "csv": Document, "rtf": Document,
	"ods": Document, "ppt": Document, "pptx": Document, "md": Document,
	"html": Document, "htm": Document, "odt": Document, "odp": Document,

	"mp4": Video, "avi": Video, "mov": Video, "mkv": Video, "webm": Video,
	"flv": Video, "wmv": Video, "m4v": Video, "3gp": Video,

	"mp3": Audio, "wav": Audio, "ogg": Audio, "flac": Audio, "aac": Audio,
	"m4a": Audio, "wma": Audio, "aiff": Audio, "alac": Audio,
}

// Parse validates a category string coming from a client. Unknown values
// are rejected instead of being indexed permissively
func Parse(s string) (Category, error) {
	switch c := Category(strings.ToLower(s)); c {
	case Image, Document, Video, Audio, Other:
		return c, nil
	default:
		return "", fmt.Errorf("unknown file category %q", s)
	}
}

// FromFilename derives the category and bare extension from a file name.
// Names without a known extension fall into Other
func FromFilename(name string) (Category, string) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return Other, ""
	}

	c, ok := extensions[ext]
	if !ok {
		return Other, ext
	}

	return c, ext
}
