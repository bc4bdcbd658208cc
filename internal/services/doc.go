// Package services defines the shared error taxonomy and context annotations
// used by the merge and enrichment pipelines.
package services
