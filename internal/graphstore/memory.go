package graphstore

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
)

// InMemoryClient is a test double for the graph store. It is not a Cypher
// engine: it recognizes the statement shapes the audit subsystem issues
// (event insert, entity history, recent changes, time range) and answers
// them from maps. Anything else is rejected.
type InMemoryClient struct {
	mu      sync.RWMutex
	nodes   []map[string]any
	indexes map[string]bool
	unique  map[string]bool
}

// NewInMemory constructs an empty in-memory graph client.
func NewInMemory() *InMemoryClient {
	return &InMemoryClient{
		indexes: make(map[string]bool),
		unique:  make(map[string]bool),
	}
}

func (c *InMemoryClient) ExecuteWrite(_ context.Context, statement string, params map[string]any) (WriteSummary, error) {
	if !strings.Contains(statement, "CREATE (e:AuditEvent") {
		return WriteSummary{}, fmt.Errorf("in-memory client: unsupported write statement: %.60s", statement)
	}
	props, ok := params["props"].(map[string]any)
	if !ok {
		return WriteSummary{}, fmt.Errorf("in-memory client: write missing props parameter")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unique["AuditEvent.event_id"] {
		eventID := props["event_id"]
		for _, node := range c.nodes {
			if node["event_id"] == eventID {
				return WriteSummary{}, fmt.Errorf("%w: event_id %v", ErrConstraintViolation, eventID)
			}
		}
	}

	stored := make(map[string]any, len(props))
	maps.Copy(stored, props)
	c.nodes = append(c.nodes, stored)

	summary := WriteSummary{NodesCreated: 1, PropertiesSet: len(stored)}
	if strings.Contains(statement, "AUDITS_ENTITY") {
		summary.RelationshipsCreated = 1
	}
	return summary, nil
}

func (c *InMemoryClient) ExecuteRead(_ context.Context, statement string, params map[string]any) ([]Record, error) {
	if !strings.Contains(statement, "MATCH (e:AuditEvent") {
		return nil, fmt.Errorf("in-memory client: unsupported read statement: %.60s", statement)
	}
	namespace, ok := params["namespace"].(string)
	if !ok {
		return nil, fmt.Errorf("in-memory client: read missing namespace parameter")
	}

	c.mu.RLock()
	var matched []map[string]any
	for _, node := range c.nodes {
		if node["namespace"] != namespace {
			continue
		}
		if entityID, ok := params["entity_id"]; ok && node["entity_id"] != entityID {
			continue
		}
		if start, ok := params["start"]; ok {
			ts := asInt64(node["timestamp"])
			if ts < asInt64(start) || ts > asInt64(params["end"]) {
				continue
			}
		}
		matched = append(matched, node)
	}
	c.mu.RUnlock()

	descending := strings.Contains(statement, "ORDER BY e.timestamp DESC")
	sort.SliceStable(matched, func(i, j int) bool {
		ti, tj := asInt64(matched[i]["timestamp"]), asInt64(matched[j]["timestamp"])
		if ti != tj {
			if descending {
				return ti > tj
			}
			return ti < tj
		}
		// Stable tiebreak mirrors the secondary sort key in the statements.
		idI, _ := matched[i]["event_id"].(string)
		idJ, _ := matched[j]["event_id"].(string)
		if descending {
			return idI > idJ
		}
		return idI < idJ
	})

	if limit, ok := params["limit"]; ok {
		if n := int(asInt64(limit)); n >= 0 && n < len(matched) {
			matched = matched[:n]
		}
	}

	records := make([]Record, 0, len(matched))
	for _, node := range matched {
		event := make(map[string]any, len(node))
		maps.Copy(event, node)
		records = append(records, Record{"event": event})
	}
	return records, nil
}

func (c *InMemoryClient) EnsureIndex(_ context.Context, label, property string, unique bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := label + "." + property
	c.indexes[key] = true
	if unique {
		c.unique[key] = true
	}
	return nil
}

// Ping always succeeds for the in-memory double.
func (c *InMemoryClient) Ping(_ context.Context) error {
	return nil
}

func (c *InMemoryClient) Close(_ context.Context) error {
	return nil
}

// HasIndex reports whether an index was ensured for label.property.
func (c *InMemoryClient) HasIndex(label, property string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexes[label+"."+property]
}

// HasUniqueConstraint reports whether a uniqueness constraint was ensured
// for label.property.
func (c *InMemoryClient) HasUniqueConstraint(label, property string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unique[label+"."+property]
}

// NodeCount returns the number of stored event nodes.
func (c *InMemoryClient) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Corrupt overwrites a stored property on the i-th node. Tests use it to
// simulate schema drift in persisted records.
func (c *InMemoryClient) Corrupt(i int, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 && i < len(c.nodes) {
		if value == nil {
			delete(c.nodes[i], key)
			return
		}
		c.nodes[i][key] = value
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

var _ Client = (*InMemoryClient)(nil)
