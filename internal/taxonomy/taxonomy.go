// Package taxonomy folds a document set into tag and category indices.
package taxonomy

import (
	"sort"

	"git.home.luguber.info/inful/blogsmith/internal/content"
)

// Entry is one tag or category: a display label and its member documents
// in document order (date-descending, inherited from the input).
//
// Two labels normalizing to the same slug share one entry; the first-seen
// label wins for display.
type Entry struct {
	Slug    string
	Label   string
	Members []*content.Document
}

// Aggregate folds docs into slug-keyed tag and category indices. Pure:
// it never reorders or mutates the documents.
func Aggregate(docs []*content.Document) (tags, categories map[string]*Entry) {
	tags = make(map[string]*Entry)
	categories = make(map[string]*Entry)
	for _, doc := range docs {
		for _, ref := range doc.Tags {
			appendMember(tags, ref, doc)
		}
		for _, ref := range doc.Categories {
			appendMember(categories, ref, doc)
		}
	}
	return tags, categories
}

func appendMember(index map[string]*Entry, ref content.TaxonomyRef, doc *content.Document) {
	entry, ok := index[ref.Slug]
	if !ok {
		entry = &Entry{Slug: ref.Slug, Label: ref.Label}
		index[ref.Slug] = entry
	}
	entry.Members = append(entry.Members, doc)
}

// Sorted orders entries for index pages: descending member count, then
// ascending label.
func Sorted(index map[string]*Entry) []*Entry {
	entries := make([]*Entry, 0, len(index))
	for _, entry := range index {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].Members) != len(entries[j].Members) {
			return len(entries[i].Members) > len(entries[j].Members)
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}
