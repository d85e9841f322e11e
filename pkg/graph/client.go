// Package graph implements the knowledge-graph side of the system: the
// Neo4j client, the entity/relationship upserter, model-driven extraction,
// the ingestion pipeline, and graph-context resolution for queries.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Querier is the minimal graph-store surface the pipelines depend on:
// a query string in the store's native language plus a parameter map,
// returning one alias-to-value map per result row. Values are always
// passed as bound parameters, never concatenated into the query text.
type Querier interface {
	Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Client wraps the Neo4j Bolt driver. It implements Querier.
type Client struct {
	driver neo4j.DriverWithContext
}

// Config holds graph database connection settings, read once at
// construction.
type Config struct {
	URI      string
	Username string
	Password string
}

// NewClient creates a new graph database client. Credentials are optional;
// without a username the connection is unauthenticated.
func NewClient(cfg Config) (*Client, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	return &Client{driver: driver}, nil
}

// Close closes the driver connection.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// VerifyConnectivity checks that the database is reachable.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Query runs a single Cypher statement with bound parameters and returns
// the result rows as alias-to-value maps. Write statements return their
// (possibly empty) row set the same way.
func (c *Client) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		c.driver,
		cypher,
		params,
		neo4j.EagerResultTransformer,
	)
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}

	rows := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		row := make(map[string]any, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			row[key] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}
