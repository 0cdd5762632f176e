package handler

import (
	"time"

	"graphtrail/internal/audit/models"
)

// EventResponse is the wire shape of one audit event. Entity and
// relationship fields are mutually exclusive and omitted when empty.
type EventResponse struct {
	EventID          string         `json:"event_id"`
	EventType        string         `json:"event_type"`
	EntityID         string         `json:"entity_id,omitempty"`
	EntityType       string         `json:"entity_type,omitempty"`
	SourceID         string         `json:"source_id,omitempty"`
	TargetID         string         `json:"target_id,omitempty"`
	RelationshipType string         `json:"relationship_type,omitempty"`
	OldProperties    map[string]any `json:"old_properties"`
	NewProperties    map[string]any `json:"new_properties"`
	Namespace        string         `json:"namespace"`
	DocumentID       string         `json:"document_id,omitempty"`
	Timestamp        string         `json:"timestamp"`
}

// EventsResponse is the envelope for every query endpoint.
type EventsResponse struct {
	Namespace string          `json:"namespace"`
	Count     int             `json:"count"`
	Events    []EventResponse `json:"events"`
}

func toEventsResponse(namespace string, events []*models.AuditEvent) EventsResponse {
	out := EventsResponse{
		Namespace: namespace,
		Count:     len(events),
		Events:    make([]EventResponse, 0, len(events)),
	}
	for _, event := range events {
		out.Events = append(out.Events, toEventResponse(event))
	}
	return out
}

func toEventResponse(e *models.AuditEvent) EventResponse {
	return EventResponse{
		EventID:          e.EventID,
		EventType:        string(e.EventType),
		EntityID:         e.EntityID,
		EntityType:       e.EntityType,
		SourceID:         e.SourceID,
		TargetID:         e.TargetID,
		RelationshipType: e.RelationshipType,
		OldProperties:    e.OldProperties,
		NewProperties:    e.NewProperties,
		Namespace:        e.Namespace,
		DocumentID:       e.DocumentID,
		Timestamp:        e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
