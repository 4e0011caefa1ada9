package session

import (
	"mime"
	"net/url"
	"path/filepath"
)

// Target is one matched path. It is built once per accepted record and
// never changed afterwards.
type Target struct {
	Path string
	// Name is the final element of Path.
	Name string
	// URL is the file:// form of Path.
	URL string
	// MimeType is guessed from the extension; empty when unknown.
	MimeType string
}

// NewTarget derives a Target from an absolute path.
func NewTarget(path string) Target {
	name := filepath.Base(path)
	u := url.URL{Scheme: "file", Path: path}
	return Target{
		Path:     path,
		Name:     name,
		URL:      u.String(),
		MimeType: mime.TypeByExtension(filepath.Ext(name)),
	}
}
