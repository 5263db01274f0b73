package models

import "time"

// PostMeta holds the normalized identity of a post.
type PostMeta struct {
	ID           string
	Slug         string
	CoverImageID string
	CoverImage   string
	Type         string
	ImageURLs    []string
}

// AddImageURL appends url unless it is already present.
func (m *PostMeta) AddImageURL(url string) bool {
	for _, existing := range m.ImageURLs {
		if existing == url {
			return false
		}
	}
	m.ImageURLs = append(m.ImageURLs, url)
	return true
}

// Post is the working envelope for one post during a run.
type Post struct {
	Data        *RawItem
	Meta        PostMeta
	Content     string
	Frontmatter *Frontmatter

	// Date is the parsed publication date, set during frontmatter assembly
	// and used to lay out the output path.
	Date time.Time
}

// Image is an image reference discovered in the export.
type Image struct {
	ID     string
	PostID string
	URL    string
}

// ScrapedImageID marks images found in post bodies rather than as attachments.
const ScrapedImageID = "-1"
