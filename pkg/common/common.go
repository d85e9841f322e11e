// Package common holds the value types shared between the graph
// construction pipeline and the retrieval pipeline.
package common

// Entity is a typed node in the knowledge graph. Identity is the ID
// string itself, the canonical display name produced by extraction.
// Equality is exact: no case folding, no whitespace trimming, no fuzzy
// matching. Type is a free-form category label and is overwritten on
// re-merge, not accumulated.
type Entity struct {
	ID   string `json:"id" jsonschema_description:"Unique identifier for the entity"`
	Type string `json:"type" jsonschema_description:"Type of the entity (e.g., Person, Organization, Concept)"`
}

// Relationship is a directed, typed edge between two entities.
// (Source, Target, Type) forms its identity; merging the same triple
// again updates Description in place. Description is nil when the model
// supplied none.
type Relationship struct {
	Source      string  `json:"source" jsonschema_description:"Source entity ID"`
	Target      string  `json:"target" jsonschema_description:"Target entity ID"`
	Type        string  `json:"type" jsonschema_description:"Type of relationship (e.g., WORKS_FOR, LOCATED_IN)"`
	Description *string `json:"description,omitempty" jsonschema_description:"Brief description of the relationship context"`
}

// GraphExtractionResult is the transient output of extracting one text
// chunk. It is never persisted as a unit; its members are upserted
// individually, entities first.
type GraphExtractionResult struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// DocumentChunk is the unit of both graph extraction and embedding.
// It is owned by the caller; neither pipeline retains it.
type DocumentChunk struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
