package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "graphtrail/pkg/domain-errors"
)

// RecordSuite covers the serialization adapter. The round-trip law is
// the contract the query path depends on: every event written through
// ToRecord must come back identical through FromRecord.
type RecordSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

func entityEvent() *AuditEvent {
	return &AuditEvent{
		EventID:       "0d5bd1f2-4f3a-4c3e-9f57-2f6f1f2a9e01",
		EventType:     EntityUpdated,
		EntityID:      "e1",
		EntityType:    "PERSON",
		OldProperties: PropertyMap{"name": "John", "age": float64(41)},
		NewProperties: PropertyMap{"name": "John Doe", "age": float64(42), "active": true},
		Namespace:     "default",
		DocumentID:    "doc-7",
		Timestamp:     time.Unix(0, 1700000000123456789).UTC(),
	}
}

func relationshipEvent() *AuditEvent {
	return &AuditEvent{
		EventID:          "7c4e9a38-bb1d-43e0-8a54-91c55bb3f002",
		EventType:        RelationshipDeleted,
		SourceID:         "e1",
		TargetID:         "e2",
		RelationshipType: "KNOWS",
		OldProperties:    PropertyMap{"since": float64(2020)},
		NewProperties:    PropertyMap{},
		Namespace:        "default",
		Timestamp:        time.Unix(0, 1700000001000000000).UTC(),
	}
}

func (s *RecordSuite) TestRoundTrip() {
	s.Run("entity event survives a round trip", func() {
		original := entityEvent()
		record, err := ToRecord(original)
		s.Require().NoError(err)

		restored, err := FromRecord(record)
		s.Require().NoError(err)
		s.Equal(original, restored)
	})

	s.Run("relationship event survives a round trip", func() {
		original := relationshipEvent()
		record, err := ToRecord(original)
		s.Require().NoError(err)

		restored, err := FromRecord(record)
		s.Require().NoError(err)
		s.Equal(original, restored)
	})

	s.Run("creation event with no prior state round-trips empty old properties", func() {
		original := entityEvent()
		original.EventType = EntityCreated
		original.OldProperties = PropertyMap{}

		record, err := ToRecord(original)
		s.Require().NoError(err)

		restored, err := FromRecord(record)
		s.Require().NoError(err)
		s.Equal(original, restored)
		s.Empty(restored.OldProperties)
	})

	s.Run("property encoding is key-order independent", func() {
		a := entityEvent()
		recordA, err := ToRecord(a)
		s.Require().NoError(err)

		b := entityEvent()
		recordB, err := ToRecord(b)
		s.Require().NoError(err)

		// Maps have no iteration order; the canonical encoding must not
		// depend on one.
		s.Equal(recordA[FieldOldProperties], recordB[FieldOldProperties])
		s.Equal(recordA[FieldNewProperties], recordB[FieldNewProperties])
	})
}

func (s *RecordSuite) TestToRecordShape() {
	record, err := ToRecord(entityEvent())
	s.Require().NoError(err)

	s.Equal("entity_updated", record[FieldEventType])
	s.Equal("e1", record[FieldEntityID])
	s.Equal(int64(1700000000123456789), record[FieldTimestamp])

	// Snapshots are flattened to JSON text; the store only holds scalars.
	s.IsType("", record[FieldOldProperties])
	s.IsType("", record[FieldNewProperties])
	s.JSONEq(`{"age":41,"name":"John"}`, record[FieldOldProperties].(string))
}

func (s *RecordSuite) TestToRecordRejectsInvalidEvents() {
	s.Run("rejects unsupported property values", func() {
		e := entityEvent()
		e.NewProperties = PropertyMap{"nested": map[string]any{"x": 1}}
		_, err := ToRecord(e)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects invariant violations", func() {
		e := entityEvent()
		e.Namespace = ""
		_, err := ToRecord(e)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RecordSuite) TestFromRecordMalformed() {
	valid := func() map[string]any {
		record, err := ToRecord(entityEvent())
		s.Require().NoError(err)
		return record
	}

	s.Run("missing event_type", func() {
		record := valid()
		delete(record, FieldEventType)
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("unknown event_type", func() {
		record := valid()
		record[FieldEventType] = "entity_renamed"
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("missing event_id", func() {
		record := valid()
		record[FieldEventID] = ""
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("missing namespace", func() {
		record := valid()
		delete(record, FieldNamespace)
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("missing timestamp", func() {
		record := valid()
		delete(record, FieldTimestamp)
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("corrupt property JSON", func() {
		record := valid()
		record[FieldOldProperties] = "{not json"
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("drifted variant fields", func() {
		record := valid()
		// An entity event that also carries edge fields is schema drift,
		// not caller error.
		record[FieldSourceID] = "e9"
		_, err := FromRecord(record)
		s.True(dErrors.HasCode(err, dErrors.CodeMalformedRecord))
	})

	s.Run("accepts float64 timestamps from drivers that lose int64", func() {
		record := valid()
		record[FieldTimestamp] = float64(1700000000000000000)
		restored, err := FromRecord(record)
		s.Require().NoError(err)
		s.Equal(int64(1700000000000000000), restored.Timestamp.UnixNano())
	})
}
