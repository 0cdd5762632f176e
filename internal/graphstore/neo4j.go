package graphstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	dErrors "graphtrail/pkg/domain-errors"
)

// Neo4jClient implements Client against a Neo4j (or Bolt-compatible)
// deployment. Sessions are cheap handles over the driver's connection
// pool, so one is opened per call.
type Neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
}

// Neo4jOption configures the Neo4jClient.
type Neo4jOption func(*Neo4jClient)

// WithDatabase selects a named database instead of the server default.
func WithDatabase(name string) Neo4jOption {
	return func(c *Neo4jClient) {
		c.database = name
	}
}

// NewNeo4j connects to the store at uri and verifies connectivity before
// returning, so a misconfigured deployment fails at startup rather than on
// the first audit write.
func NewNeo4j(ctx context.Context, uri, username, password string, opts ...Neo4jOption) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid graph store uri", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	client := &Neo4jClient{driver: driver}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *Neo4jClient) ExecuteWrite(ctx context.Context, statement string, params map[string]any) (WriteSummary, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statement, params)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		counters := summary.Counters()
		return WriteSummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			PropertiesSet:        counters.PropertiesSet(),
		}, nil
	})
	if err != nil {
		return WriteSummary{}, mapNeo4jError(err)
	}
	return result.(WriteSummary), nil
}

func (c *Neo4jClient) ExecuteRead(ctx context.Context, statement string, params map[string]any) ([]Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statement, params)
		if err != nil {
			return nil, err
		}
		rows, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, Record(row.AsMap()))
		}
		return records, nil
	})
	if err != nil {
		return nil, mapNeo4jError(err)
	}
	return result.([]Record), nil
}

// EnsureIndex creates a uniqueness constraint or a range index. Schema
// elements cannot be parameterized in Cypher, so label and property are
// interpolated; both come from compile-time constants in the audit layer.
func (c *Neo4jClient) EnsureIndex(ctx context.Context, label, property string, unique bool) error {
	var statement string
	if unique {
		statement = fmt.Sprintf(
			"CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			strings.ToLower(label), property, label, property,
		)
	} else {
		statement = fmt.Sprintf(
			"CREATE INDEX %s_%s_idx IF NOT EXISTS FOR (n:%s) ON (n.%s)",
			strings.ToLower(label), property, label, property,
		)
	}
	_, err := c.ExecuteWrite(ctx, statement, nil)
	return err
}

// Ping verifies connectivity for readiness probes.
func (c *Neo4jClient) Ping(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// mapNeo4jError translates driver failures onto the client error contract
// so callers can branch with errors.Is instead of driver types.
func mapNeo4jError(err error) error {
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "ConstraintValidationFailed") {
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	}
	return err
}
