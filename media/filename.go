// Package media holds image filename rules and the dimension store shared by
// the downloader and the translator.
package media

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var resizedVariant = regexp.MustCompile(`^(.+)-(\d+)x(\d+)(\.\w+)$`)

var imageExtensions = map[string]struct{}{
	".gif":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".svg":  {},
}

// ImageDir is the directory name images are stored under, relative to a post.
const ImageDir = "images"

// BaseFilename collapses a resized-variant filename such as photo-300x200.jpg
// to photo.jpg. It reports false when name is not a resized variant.
func BaseFilename(name string) (string, bool) {
	m := resizedVariant.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1] + m[4], true
}

// NormalizeFilename returns the base filename of name, or name itself when it
// is already canonical.
func NormalizeFilename(name string) string {
	if base, ok := BaseFilename(name); ok {
		return base
	}
	return name
}

// FilenameFromURL returns the decoded last path segment of raw. Query strings
// and fragments are ignored.
func FilenameFromURL(raw string) string {
	var name string
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		// u.Path is already decoded
		name = path.Base(u.Path)
	} else {
		p := raw
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
		name = path.Base(p)
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
	}
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// IsImageFilename reports whether name has a known image extension.
func IsImageFilename(name string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// IsImageURL reports whether the path of raw ends in an image extension.
func IsImageURL(raw string) bool {
	return IsImageFilename(FilenameFromURL(raw))
}

// LocalPath maps any image reference to images/<base filename>, regardless of
// how deep the original path was.
func LocalPath(src string) string {
	return ImageDir + "/" + NormalizeFilename(FilenameFromURL(src))
}
