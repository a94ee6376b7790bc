package editor

import (
	"strings"

	"github.com/camden-git/photomscompanion/models"
)

// TagSet is the in-memory tag list being edited for one photo. Order is
// insertion order; identity is the case-insensitive tag name. AI tags take
// part in deduplication like any other tag but are never replaced by a user
// tag of the same name.
type TagSet struct {
	tags []models.Tag
}

// NewTagSet starts an edit session from a photo's current tags. The input
// slice is copied so the session never aliases cached entities.
func NewTagSet(tags []models.Tag) *TagSet {
	ts := &TagSet{tags: make([]models.Tag, len(tags))}
	copy(ts.tags, tags)
	return ts
}

// Add appends a user tag with the given name. Whitespace is trimmed; empty
// names and names already present (case-insensitively, regardless of source)
// are silent no-ops. Returns whether the tag was added.
func (ts *TagSet) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, t := range ts.tags {
		if strings.EqualFold(t.Name, name) {
			return false
		}
	}
	ts.tags = append(ts.tags, models.Tag{Name: name, Source: models.TagSourceUser})
	return true
}

// RemoveAt removes exactly the tag at the given position, preserving the
// order of all others. Out-of-range indices are a no-op.
func (ts *TagSet) RemoveAt(index int) bool {
	if index < 0 || index >= len(ts.tags) {
		return false
	}
	ts.tags = append(ts.tags[:index], ts.tags[index+1:]...)
	return true
}

// Len returns the number of tags in the set.
func (ts *TagSet) Len() int {
	return len(ts.tags)
}

// Tags returns a copy of the edited sequence. On commit this slice entirely
// replaces the photo's persisted tag list.
func (ts *TagSet) Tags() []models.Tag {
	out := make([]models.Tag, len(ts.tags))
	copy(out, ts.tags)
	return out
}
