package models

import (
	"encoding/json"
	"fmt"
	"time"

	dErrors "graphtrail/pkg/domain-errors"
)

// EventLabel is the node label every persisted audit event carries.
const EventLabel = "AuditEvent"

// AuditsEntityRelation links an entity event node to the entity it audits.
const AuditsEntityRelation = "AUDITS_ENTITY"

// Store-level property keys of a persisted AuditEvent node.
const (
	FieldEventID          = "event_id"
	FieldEventType        = "event_type"
	FieldEntityID         = "entity_id"
	FieldEntityType       = "entity_type"
	FieldSourceID         = "source_id"
	FieldTargetID         = "target_id"
	FieldRelationshipType = "relationship_type"
	FieldOldProperties    = "old_properties"
	FieldNewProperties    = "new_properties"
	FieldNamespace        = "namespace"
	FieldDocumentID       = "document_id"
	FieldTimestamp        = "timestamp"
)

// ToRecord flattens an event into the scalar property map the store
// accepts. Property snapshots are encoded as canonical key-sorted JSON
// text; the store cannot index nested structures, so property-level diff
// queries are traded away for whole-event retrieval. Timestamps are
// stored as Unix nanoseconds so the store's range index orders them
// natively.
func ToRecord(e *AuditEvent) (map[string]any, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	oldProps, err := encodeProperties(e.OldProperties)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "old_properties not serializable", err)
	}
	newProps, err := encodeProperties(e.NewProperties)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "new_properties not serializable", err)
	}

	return map[string]any{
		FieldEventID:          e.EventID,
		FieldEventType:        string(e.EventType),
		FieldEntityID:         e.EntityID,
		FieldEntityType:       e.EntityType,
		FieldSourceID:         e.SourceID,
		FieldTargetID:         e.TargetID,
		FieldRelationshipType: e.RelationshipType,
		FieldOldProperties:    oldProps,
		FieldNewProperties:    newProps,
		FieldNamespace:        e.Namespace,
		FieldDocumentID:       e.DocumentID,
		FieldTimestamp:        e.Timestamp.UnixNano(),
	}, nil
}

// FromRecord reconstructs an event from a stored property map. A record
// that cannot be decoded (missing fields, unknown event type, corrupt
// property JSON) fails with CodeMalformedRecord; query paths skip and
// count such records instead of aborting the batch.
func FromRecord(record map[string]any) (*AuditEvent, error) {
	eventType, err := stringField(record, FieldEventType)
	if err != nil {
		return nil, err
	}
	if !EventType(eventType).IsValid() {
		return nil, dErrors.New(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record has unknown event type %q", eventType))
	}

	e := &AuditEvent{EventType: EventType(eventType)}
	if e.EventID, err = stringField(record, FieldEventID); err != nil {
		return nil, err
	}
	if e.Namespace, err = stringField(record, FieldNamespace); err != nil {
		return nil, err
	}
	if e.EntityID, err = optionalStringField(record, FieldEntityID); err != nil {
		return nil, err
	}
	if e.EntityType, err = optionalStringField(record, FieldEntityType); err != nil {
		return nil, err
	}
	if e.SourceID, err = optionalStringField(record, FieldSourceID); err != nil {
		return nil, err
	}
	if e.TargetID, err = optionalStringField(record, FieldTargetID); err != nil {
		return nil, err
	}
	if e.RelationshipType, err = optionalStringField(record, FieldRelationshipType); err != nil {
		return nil, err
	}
	if e.DocumentID, err = optionalStringField(record, FieldDocumentID); err != nil {
		return nil, err
	}
	if e.OldProperties, err = decodeProperties(record, FieldOldProperties); err != nil {
		return nil, err
	}
	if e.NewProperties, err = decodeProperties(record, FieldNewProperties); err != nil {
		return nil, err
	}

	nanos, ok := int64Field(record[FieldTimestamp])
	if !ok {
		return nil, dErrors.New(dErrors.CodeMalformedRecord, "stored record missing timestamp")
	}
	e.Timestamp = time.Unix(0, nanos).UTC()

	// A record that decodes but breaks the variant invariants is drift,
	// not caller error, so the validation code is deliberately replaced.
	if err := e.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record violates event invariants: %v", err))
	}
	return e, nil
}

func encodeProperties(p PropertyMap) (string, error) {
	normalized, err := p.Normalized()
	if err != nil {
		return "", err
	}
	// encoding/json sorts map keys, which keeps the encoding canonical.
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeProperties(record map[string]any, field string) (PropertyMap, error) {
	raw, err := stringField(record, field)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record has corrupt %s", field), err)
	}
	props, err := PropertyMap(decoded).Normalized()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record has non-scalar values in %s: %v", field, err))
	}
	return props, nil
}

func stringField(record map[string]any, field string) (string, error) {
	value, ok := record[field].(string)
	if !ok || value == "" {
		return "", dErrors.New(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record missing %s", field))
	}
	return value, nil
}

func optionalStringField(record map[string]any, field string) (string, error) {
	value, present := record[field]
	if !present || value == nil {
		return "", nil
	}
	str, ok := value.(string)
	if !ok {
		return "", dErrors.New(dErrors.CodeMalformedRecord,
			fmt.Sprintf("stored record has non-string %s", field))
	}
	return str, nil
}

func int64Field(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
