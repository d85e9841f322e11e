package graph

import (
	"context"
	"fmt"
	"strings"

	"graphrag/pkg/common"
)

// Upserter merges entities and relationships into the graph store
// idempotently. Both operations are keyed merges at the store level, so
// concurrent identical calls cannot produce duplicate nodes or edges.
type Upserter struct {
	store Querier
}

// NewUpserter creates an Upserter on top of the given store.
func NewUpserter(store Querier) *Upserter {
	return &Upserter{store: store}
}

// NormalizeRelType turns a free-form relationship type into the edge-type
// token stored in the graph: uppercased, with runs of non-alphanumeric
// characters collapsed to a single underscore. The store treats edge
// types as fixed schema tokens rather than data values, so this is the
// one string that is interpolated into query text; after normalization
// it can only contain [A-Z0-9_].
func NormalizeRelType(relType string) string {
	upper := strings.ToUpper(relType)

	var b strings.Builder
	lastUnderscore := false
	for _, r := range upper {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	token := strings.Trim(b.String(), "_")
	if token == "" {
		token = "RELATED_TO"
	}
	return token
}

// UpsertEntity creates the node with the given id if absent; if present
// it overwrites the type label. The merge is by id only, so two
// extractions producing the same id land on the same node.
func (u *Upserter) UpsertEntity(ctx context.Context, entity common.Entity) error {
	_, err := u.store.Query(ctx,
		"MERGE (n:Entity {id: $id}) SET n.type = $type",
		map[string]any{"id": entity.ID, "type": entity.Type},
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entity %q: %w", entity.ID, err)
	}
	return nil
}

// UpsertRelationship merges a directed edge between two existing entity
// nodes, keyed by (source, target, normalized type). Re-merging the same
// triple updates the description in place. When either endpoint node does
// not exist the MATCH yields zero rows and no edge is created: a silent
// no-op, not an error.
func (u *Upserter) UpsertRelationship(ctx context.Context, rel common.Relationship) error {
	relType := NormalizeRelType(rel.Type)

	cypher := fmt.Sprintf(`MATCH (s:Entity {id: $source})
MATCH (t:Entity {id: $target})
MERGE (s)-[r:%s]->(t)
SET r.description = $description`, relType)

	var description any
	if rel.Description != nil {
		description = *rel.Description
	}

	_, err := u.store.Query(ctx, cypher, map[string]any{
		"source":      rel.Source,
		"target":      rel.Target,
		"description": description,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relationship %q-[%s]->%q: %w", rel.Source, relType, rel.Target, err)
	}
	return nil
}
