// Package span holds the reconciliation primitives every corpus adapter uses to
// turn source annotations into offsets that agree with a canonical text:
// a text builder that records where each unit landed, a splitter for
// discontiguous mentions, a document-local id allocator and the strict or
// lenient policy that decides what happens to annotations that do not fit.
package span
