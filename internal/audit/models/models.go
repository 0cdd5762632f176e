// Package models defines the audit event record and its store-level
// serialization. Events are immutable once written; corrections are
// expressed as new events.
package models

import (
	"fmt"
	"time"

	dErrors "graphtrail/pkg/domain-errors"
)

// EventType tags the kind of graph mutation an AuditEvent documents.
// Entity and relationship variants populate mutually exclusive field
// groups on the event.
type EventType string

const (
	EntityCreated       EventType = "entity_created"
	EntityUpdated       EventType = "entity_updated"
	EntityDeleted       EventType = "entity_deleted"
	RelationshipCreated EventType = "relationship_created"
	RelationshipDeleted EventType = "relationship_deleted"
)

// IsValid reports whether t is one of the five recognized variants.
func (t EventType) IsValid() bool {
	switch t {
	case EntityCreated, EntityUpdated, EntityDeleted, RelationshipCreated, RelationshipDeleted:
		return true
	}
	return false
}

// IsEntity reports whether t is an entity-scoped variant.
func (t EventType) IsEntity() bool {
	switch t {
	case EntityCreated, EntityUpdated, EntityDeleted:
		return true
	}
	return false
}

// IsRelationship reports whether t is a relationship-scoped variant.
func (t EventType) IsRelationship() bool {
	switch t {
	case RelationshipCreated, RelationshipDeleted:
		return true
	}
	return false
}

// PropertyMap is a flat snapshot of element state before or after a
// change. Values are restricted to strings, numbers, and booleans; the
// store's property model cannot hold nested structures.
type PropertyMap map[string]any

// Normalized returns a copy with all numeric values coerced to float64,
// matching what the store-level JSON encoding round-trips to. A nil map
// normalizes to an empty one. Unsupported value kinds are rejected here,
// before any write reaches the store.
func (p PropertyMap) Normalized() (PropertyMap, error) {
	out := make(PropertyMap, len(p))
	for key, value := range p {
		switch v := value.(type) {
		case string, bool, float64:
			out[key] = v
		case int:
			out[key] = float64(v)
		case int32:
			out[key] = float64(v)
		case int64:
			out[key] = float64(v)
		case float32:
			out[key] = float64(v)
		default:
			return nil, dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("property %q: unsupported value kind %T", key, value))
		}
	}
	return out, nil
}

// AuditEvent is the immutable record of one graph mutation. EventID and
// Timestamp are assigned by the audit service at log time, never by the
// caller.
type AuditEvent struct {
	EventID          string
	EventType        EventType
	EntityID         string
	EntityType       string
	SourceID         string
	TargetID         string
	RelationshipType string
	OldProperties    PropertyMap
	NewProperties    PropertyMap
	Namespace        string
	DocumentID       string
	Timestamp        time.Time
}

// Validate enforces the structural invariants: a recognized event type,
// a namespace on every event, and the variant's required field group with
// the other group absent.
func (e *AuditEvent) Validate() error {
	if !e.EventType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid event type: %s", e.EventType))
	}
	if e.EventID == "" {
		return dErrors.New(dErrors.CodeValidation, "event_id is required")
	}
	if e.Namespace == "" {
		return dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	if e.Timestamp.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "timestamp is required")
	}

	if e.EventType.IsEntity() {
		if e.EntityID == "" || e.EntityType == "" {
			return dErrors.New(dErrors.CodeValidation, "entity events require entity_id and entity_type")
		}
		if e.SourceID != "" || e.TargetID != "" || e.RelationshipType != "" {
			return dErrors.New(dErrors.CodeValidation, "entity events must not carry relationship fields")
		}
		return nil
	}

	if e.SourceID == "" || e.TargetID == "" || e.RelationshipType == "" {
		return dErrors.New(dErrors.CodeValidation, "relationship events require source_id, target_id and relationship_type")
	}
	if e.EntityID != "" || e.EntityType != "" {
		return dErrors.New(dErrors.CodeValidation, "relationship events must not carry entity fields")
	}
	return nil
}
