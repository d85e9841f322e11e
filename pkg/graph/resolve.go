package graph

import (
	"context"
	"fmt"
	"strings"

	"graphrag/pkg/logger"
)

// maxRowsPerEntity caps the one-hop neighborhood fetched per recognized
// entity.
const maxRowsPerEntity = 10

const resolveCypher = `MATCH (n:Entity) WHERE n.id CONTAINS $entity
OPTIONAL MATCH (n)-[r]-(m)
RETURN n.id AS nodeId, type(r) AS relType, m.id AS neighborId, r.description AS description
LIMIT $limit`

// Resolver renders graph-neighborhood context for a set of entity
// mentions. Matching is case-sensitive substring containment against node
// ids; no entity linking or normalization happens here.
type Resolver struct {
	store Querier
}

// NewResolver creates a Resolver on top of the given store.
func NewResolver(store Querier) *Resolver {
	return &Resolver{store: store}
}

// ResolveContext looks up the one-hop neighborhood of every entity string
// and renders the rows as "<nodeId> <relType> <neighborId>" lines, with a
// trailing " (<description>)" when the edge carries one. A store error
// for one entity contributes nothing and does not abort the rest.
// Entities with no matches contribute nothing; the result is an empty
// string when no entity yields a row.
func (r *Resolver) ResolveContext(ctx context.Context, entities []string) string {
	var lines []string

	for _, entity := range entities {
		rows, err := r.store.Query(ctx, resolveCypher, map[string]any{
			"entity": entity,
			"limit":  maxRowsPerEntity,
		})
		if err != nil {
			logger.Debug("[Resolver] Entity lookup failed", "entity", entity, "err", err)
			continue
		}

		for _, row := range rows {
			line, ok := renderContextRow(row)
			if !ok {
				continue
			}
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

// renderContextRow formats one resolver row. Rows produced by the
// OPTIONAL MATCH for isolated nodes have a null relationship and are
// skipped.
func renderContextRow(row map[string]any) (string, bool) {
	nodeID, ok := row["nodeId"].(string)
	if !ok {
		return "", false
	}
	relType, ok := row["relType"].(string)
	if !ok {
		return "", false
	}
	neighborID, ok := row["neighborId"].(string)
	if !ok {
		return "", false
	}

	line := fmt.Sprintf("%s %s %s", nodeID, relType, neighborID)
	if description, ok := row["description"].(string); ok && description != "" {
		line = fmt.Sprintf("%s (%s)", line, description)
	}
	return line, true
}
