// Package kb provides the knowledge-base document model shared by every corpus
// adapter, together with the offset validator that checks it.
//
// A Document owns its passages, entities, relations, events and coreferences.
// Cross references between records are plain string ids local to the
// document; nothing is shared between documents.
//
// # Canonical Text
//
// All offsets are [start, end) pairs counted in Unicode code points against
// the document's canonical text: the passage texts, in order, joined with the
// document joiner (a single space unless the adapter says otherwise).
//
//	doc := &kb.Document{
//	    ID:         "1",
//	    DocumentID: "PMID:123",
//	    Passages: []kb.Passage{
//	        {ID: "p1", Type: "title", Text: []string{"Aspirin and pain"}, Offsets: []kb.Offset{{0, 16}}},
//	    },
//	}
//
// # Validation
//
// Validator re-derives text from offsets and reports every mismatch and every
// unresolved id it finds, aggregated across documents.
//
// # Fingerprints
//
// Fingerprint hashes any record with SHA-256 and BLAKE3 over its JSON form so
// repeated conversions can be compared byte for byte.
package kb
