// Package content defines Sentinel's canonical data model: the platform-
// agnostic Record produced by ingestors, the persisted Post, the reviewer
// Verdict lifecycle, and the Store contract both the ingestion pipeline and
// the review queue are built on.
package content
