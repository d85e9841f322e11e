package graph

import (
	"context"
	"errors"
	"strings"
)

// fakeStore emulates the store-level semantics the pipelines rely on:
// merge-by-key for nodes, match-then-merge for edges, substring matching
// with optional one-hop neighbors for context resolution.
type fakeStore struct {
	nodes map[string]string // id -> type
	edges map[edgeKey]*string

	queries []recordedQuery
	failAll bool
}

type edgeKey struct {
	source string
	target string
	typ    string
}

type recordedQuery struct {
	cypher string
	params map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes: make(map[string]string),
		edges: make(map[edgeKey]*string),
	}
}

func (f *fakeStore) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.queries = append(f.queries, recordedQuery{cypher: cypher, params: params})
	if f.failAll {
		return nil, errors.New("store unavailable")
	}

	switch {
	case strings.HasPrefix(cypher, "MERGE (n:Entity"):
		f.nodes[params["id"].(string)] = params["type"].(string)
		return nil, nil

	case strings.HasPrefix(cypher, "MATCH (s:Entity"):
		source := params["source"].(string)
		target := params["target"].(string)
		if _, ok := f.nodes[source]; !ok {
			return nil, nil
		}
		if _, ok := f.nodes[target]; !ok {
			return nil, nil
		}
		relType := relTypeFromCypher(cypher)
		var description *string
		if d, ok := params["description"].(string); ok {
			description = &d
		}
		f.edges[edgeKey{source: source, target: target, typ: relType}] = description
		return nil, nil

	case strings.HasPrefix(cypher, "MATCH (n:Entity) WHERE n.id CONTAINS"):
		return f.resolveRows(params), nil
	}

	return nil, nil
}

// relTypeFromCypher pulls the edge-type token out of the merge statement.
func relTypeFromCypher(cypher string) string {
	start := strings.Index(cypher, "[r:")
	if start == -1 {
		return ""
	}
	rest := cypher[start+len("[r:"):]
	end := strings.Index(rest, "]")
	if end == -1 {
		return ""
	}
	return rest[:end]
}

func (f *fakeStore) resolveRows(params map[string]any) []map[string]any {
	entity := params["entity"].(string)
	limit := params["limit"].(int)

	var rows []map[string]any
	for id := range f.nodes {
		if !strings.Contains(id, entity) {
			continue
		}

		matched := false
		for key, description := range f.edges {
			var row map[string]any
			switch id {
			case key.source:
				row = map[string]any{"nodeId": id, "relType": key.typ, "neighborId": key.target}
			case key.target:
				row = map[string]any{"nodeId": id, "relType": key.typ, "neighborId": key.source}
			default:
				continue
			}
			if description != nil {
				row["description"] = *description
			} else {
				row["description"] = nil
			}
			rows = append(rows, row)
			matched = true
		}

		if !matched {
			rows = append(rows, map[string]any{
				"nodeId": id, "relType": nil, "neighborId": nil, "description": nil,
			})
		}
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
