package graph

import (
	"context"
)

// BrowseEdge is one edge of a visualization subgraph.
type BrowseEdge struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Target string `json:"target"`
}

const neighborhoodCypher = `MATCH (n:Entity)-[r]-(m)
WHERE n.id CONTAINS $focus
RETURN n.id AS source, type(r) AS type, m.id AS target
LIMIT $limit`

const topConnectedCypher = `MATCH (n:Entity)-[r]->(m)
WITH n, count(r) AS relCount
ORDER BY relCount DESC
LIMIT $hubs
MATCH (n)-[r]->(m)
RETURN n.id AS source, type(r) AS type, m.id AS target`

// Browser serves the graph-visualization boundary: subgraph queries that
// bypass the retrieval pipeline and read the store directly.
type Browser struct {
	store Querier
}

// NewBrowser creates a Browser on top of the given store.
func NewBrowser(store Querier) *Browser {
	return &Browser{store: store}
}

// Neighborhood returns the edges around nodes whose id contains the focus
// term, in either direction, capped at limit rows.
func (b *Browser) Neighborhood(ctx context.Context, focus string, limit int) ([]BrowseEdge, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := b.store.Query(ctx, neighborhoodCypher, map[string]any{
		"focus": focus,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}
	return browseEdgesFromRows(rows), nil
}

// TopConnected returns the outgoing edges of the most-connected nodes,
// the overview shown when no focus term is given.
func (b *Browser) TopConnected(ctx context.Context, hubs int) ([]BrowseEdge, error) {
	if hubs <= 0 {
		hubs = 10
	}
	rows, err := b.store.Query(ctx, topConnectedCypher, map[string]any{
		"hubs": hubs,
	})
	if err != nil {
		return nil, err
	}
	return browseEdgesFromRows(rows), nil
}

func browseEdgesFromRows(rows []map[string]any) []BrowseEdge {
	edges := make([]BrowseEdge, 0, len(rows))
	for _, row := range rows {
		source, ok := row["source"].(string)
		if !ok {
			continue
		}
		relType, ok := row["type"].(string)
		if !ok {
			continue
		}
		target, ok := row["target"].(string)
		if !ok {
			continue
		}
		edges = append(edges, BrowseEdge{Source: source, Type: relType, Target: target})
	}
	return edges
}
