// Package finaldocs implements C12: back-linking TextUnit ids onto the
// documents they were chunked from.
package finaldocs

import (
	"sort"

	"github.com/tangerg/graphrag/document"
	"github.com/tangerg/graphrag/textunit"
)

// LinkTextUnits appends each text unit's id to every document it was
// derived from (document_ids may name more than one document for
// deduplicated units) and assigns a dense 0-based human_readable_id to
// each returned document, in input order.
func LinkTextUnits(documents []document.Document, textUnits []textunit.TextUnit) []document.Document {
	backlinks := make(map[string][]string, len(documents))
	for _, u := range textUnits {
		for _, docID := range u.DocumentIds {
			backlinks[docID] = append(backlinks[docID], u.ID)
		}
	}

	out := make([]document.Document, len(documents))
	for i, d := range documents {
		linked := append([]string(nil), backlinks[d.ID]...)
		sort.Strings(linked)
		d.TextUnitIds = linked
		d.HumanReadableID = i
		out[i] = d
	}
	return out
}
