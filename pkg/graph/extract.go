package graph

import (
	"context"

	"graphrag/pkg/ai"
	"graphrag/pkg/common"
)

type extractNode struct {
	ID   string `json:"id" jsonschema_description:"Unique identifier for the entity, its canonical display name"`
	Type string `json:"type" jsonschema_description:"Type of the entity (e.g., Person, Organization, Concept)"`
}

type extractRelationship struct {
	Source      string  `json:"source" jsonschema_description:"Source entity ID, as listed in nodes"`
	Target      string  `json:"target" jsonschema_description:"Target entity ID, as listed in nodes"`
	Type        string  `json:"type" jsonschema_description:"Type of relationship (e.g., WORKS_FOR, LOCATED_IN)"`
	Description *string `json:"description" jsonschema_description:"Brief description of the relationship context"`
}

type extractResponse struct {
	Nodes         []extractNode         `json:"nodes" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// Extractor turns a raw text chunk into a structured set of entities and
// relationships via one schema-constrained model call per invocation.
// It performs no retries and no persistence; a malformed model response
// surfaces as *ai.SchemaError for the caller to scope to this chunk.
type Extractor struct {
	client ai.Client
}

// NewExtractor creates an Extractor backed by the given model client.
func NewExtractor(client ai.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract issues a single extraction call for the chunk text. The input
// is not length-validated here; bounding chunk size is the caller's
// responsibility via chunking.
func (e *Extractor) Extract(ctx context.Context, text string) (*common.GraphExtractionResult, error) {
	var res extractResponse
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extract_graph_data",
		"Extract entities and relationships from a text chunk.",
		"Text: "+text,
		&res,
		ai.WithSystemPrompts(ai.ExtractPrompt),
	)
	if err != nil {
		return nil, err
	}

	result := &common.GraphExtractionResult{
		Entities:      make([]common.Entity, 0, len(res.Nodes)),
		Relationships: make([]common.Relationship, 0, len(res.Relationships)),
	}
	for _, node := range res.Nodes {
		result.Entities = append(result.Entities, common.Entity{
			ID:   node.ID,
			Type: node.Type,
		})
	}
	for _, rel := range res.Relationships {
		result.Relationships = append(result.Relationships, common.Relationship{
			Source:      rel.Source,
			Target:      rel.Target,
			Type:        rel.Type,
			Description: rel.Description,
		})
	}

	return result, nil
}
