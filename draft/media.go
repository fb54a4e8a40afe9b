package draft

import "strings"

// MediaTypePhoto is the default type of persisted media.
const MediaTypePhoto = "photo"

// NewMedia is a locally staged file that has not been uploaded yet.
type NewMedia struct {
	URI      string `json:"uri" yaml:"uri"`
	Name     string `json:"name" yaml:"name"`
	MimeType string `json:"mimeType" yaml:"mimeType"`
}

// ExistingMedia references media already persisted remotely. URL is its
// identity.
type ExistingMedia struct {
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type" yaml:"type"`
}

// Media keeps new and existing items apart. The original snapshot is taken
// once, when the draft is opened, and removals are computed against it.
type Media struct {
	New      []NewMedia
	Existing []ExistingMedia
	original []ExistingMedia
}

// NewMediaSet opens a media set with persisted items and snapshots them.
func NewMediaSet(existing []ExistingMedia) Media {
	items := dedupeExisting(existing)
	return Media{
		Existing: items,
		original: append([]ExistingMedia(nil), items...),
	}
}

// Add stages new files, skipping entries without a source.
func (m *Media) Add(items ...NewMedia) int {
	added := 0
	for _, item := range items {
		if strings.TrimSpace(item.URI) == "" {
			continue
		}
		m.New = append(m.New, item)
		added++
	}
	return added
}

// RemoveNew drops a staged file by position.
func (m *Media) RemoveNew(index int) bool {
	if index < 0 || index >= len(m.New) {
		return false
	}
	m.New = append(m.New[:index:index], m.New[index+1:]...)
	return true
}

// RemoveExisting drops a persisted item by url.
func (m *Media) RemoveExisting(url string) bool {
	for i, item := range m.Existing {
		if item.URL == url {
			m.Existing = append(m.Existing[:i:i], m.Existing[i+1:]...)
			return true
		}
	}
	return false
}

// RestoreExisting brings back an item from the original snapshot.
func (m *Media) RestoreExisting(url string) bool {
	for _, item := range m.Existing {
		if item.URL == url {
			return false
		}
	}
	for _, item := range m.original {
		if item.URL == url {
			m.Existing = append(m.Existing, item)
			return true
		}
	}
	return false
}

// Count is the number of new plus existing items.
func (m Media) Count() int {
	return len(m.New) + len(m.Existing)
}

// Snapshot returns the items present when the draft was opened.
func (m Media) Snapshot() []ExistingMedia {
	return append([]ExistingMedia(nil), m.original...)
}

// Removed returns the snapshot items no longer present in Existing,
// compared by url, in snapshot order.
func (m Media) Removed() []ExistingMedia {
	current := make(map[string]struct{}, len(m.Existing))
	for _, item := range m.Existing {
		current[item.URL] = struct{}{}
	}
	var out []ExistingMedia
	for _, item := range m.original {
		if _, ok := current[item.URL]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func dedupeExisting(items []ExistingMedia) []ExistingMedia {
	seen := make(map[string]struct{}, len(items))
	out := make([]ExistingMedia, 0, len(items))
	for _, item := range items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		if item.Type == "" {
			item.Type = MediaTypePhoto
		}
		item.URL = url
		out = append(out, item)
	}
	return out
}
