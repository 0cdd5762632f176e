// Package service is the sole entry point for writing and querying the
// audit trail. One Service is constructed at process start and passed to
// every collaborator that logs graph mutations; audit logging documents a
// change that has already been applied, it is not a transactional guard
// on it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"graphtrail/internal/audit/models"
	"graphtrail/internal/graphstore"
	"graphtrail/internal/platform/metrics"
	dErrors "graphtrail/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks GraphClient

// GraphClient is the store surface the audit service consumes.
// Error Contract:
// - ExecuteWrite fails with graphstore.ErrUnavailable on connectivity loss
//   and graphstore.ErrConstraintViolation on uniqueness conflicts
// - EnsureIndex is idempotent
type GraphClient interface {
	ExecuteWrite(ctx context.Context, statement string, params map[string]any) (graphstore.WriteSummary, error)
	ExecuteRead(ctx context.Context, statement string, params map[string]any) ([]graphstore.Record, error)
	EnsureIndex(ctx context.Context, label, property string, unique bool) error
}

// DefaultQueryLimit caps history and recent-changes queries when the
// caller does not supply a limit.
const DefaultQueryLimit = 100

type Option func(*Service)

// Service owns the audit write and query paths. It holds no cache, no
// queue, and no lock across store calls: every operation is one round
// trip, so a write either succeeds durably or the caller sees the
// failure immediately.
type Service struct {
	client       GraphClient
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	defaultLimit int

	mu      sync.Mutex
	indexed bool
}

func NewService(client GraphClient, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		client:       client,
		logger:       logger,
		tracer:       otel.Tracer("graphtrail/audit"),
		defaultLimit: DefaultQueryLimit,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.defaultLimit <= 0 {
		svc.defaultLimit = DefaultQueryLimit
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the default OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithDefaultLimit configures the query cap applied when callers pass a
// non-positive limit.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// LogEntityChange records a mutation of a single entity. The event id and
// timestamp are assigned here, never by the caller; the returned event is
// exactly what was durably written.
func (s *Service) LogEntityChange(ctx context.Context, eventType models.EventType, entityID, entityType string, oldProps, newProps models.PropertyMap, namespace, documentID string) (*models.AuditEvent, error) {
	if !eventType.IsEntity() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("event type %q is not an entity change", eventType))
	}
	if entityID == "" || entityType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "entity_id and entity_type are required")
	}
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}

	event := &models.AuditEvent{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EntityID:      entityID,
		EntityType:    entityType,
		OldProperties: oldProps,
		NewProperties: newProps,
		Namespace:     namespace,
		DocumentID:    documentID,
		Timestamp:     now(),
	}
	return s.persist(ctx, event, createEntityEventStatement, map[string]any{
		"entity_id": entityID,
		"namespace": namespace,
	})
}

// LogRelationshipChange records a mutation of a directed, typed edge
// between two entities.
func (s *Service) LogRelationshipChange(ctx context.Context, eventType models.EventType, sourceID, targetID, relationshipType string, oldProps, newProps models.PropertyMap, namespace, documentID string) (*models.AuditEvent, error) {
	if !eventType.IsRelationship() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("event type %q is not a relationship change", eventType))
	}
	if sourceID == "" || targetID == "" || relationshipType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "source_id, target_id and relationship_type are required")
	}
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}

	event := &models.AuditEvent{
		EventID:          uuid.New().String(),
		EventType:        eventType,
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: relationshipType,
		OldProperties:    oldProps,
		NewProperties:    newProps,
		Namespace:        namespace,
		DocumentID:       documentID,
		Timestamp:        now(),
	}
	return s.persist(ctx, event, createRelationshipEventStatement, nil)
}

// GetEntityHistory returns the events for one entity within a namespace,
// oldest first. An entity with no history yields an empty slice, not an
// error.
func (s *Service) GetEntityHistory(ctx context.Context, entityID, namespace string, limit int) ([]*models.AuditEvent, error) {
	if entityID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "entity_id is required")
	}
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	return s.query(ctx, "entity_history", entityHistoryStatement, map[string]any{
		"namespace": namespace,
		"entity_id": entityID,
		"limit":     s.capLimit(limit),
	})
}

// GetRecentChanges returns the newest events in a namespace, across all
// entities and relationships, newest first.
func (s *Service) GetRecentChanges(ctx context.Context, namespace string, limit int) ([]*models.AuditEvent, error) {
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	return s.query(ctx, "recent_changes", recentChangesStatement, map[string]any{
		"namespace": namespace,
		"limit":     s.capLimit(limit),
	})
}

// GetChangesByTimeRange returns the events in a namespace with
// start <= timestamp <= end, oldest first.
func (s *Service) GetChangesByTimeRange(ctx context.Context, namespace string, start, end time.Time) ([]*models.AuditEvent, error) {
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	if start.After(end) {
		return nil, dErrors.New(dErrors.CodeInvalidRange, "start_time is after end_time")
	}
	return s.query(ctx, "time_range", timeRangeStatement, map[string]any{
		"namespace": namespace,
		"start":     start.UnixNano(),
		"end":       end.UnixNano(),
	})
}

// CreateIndexes ensures the event_id uniqueness constraint and the
// secondary indexes the query paths rely on. Safe to call repeatedly;
// writes never depend on it, missing indexes only degrade query latency.
func (s *Service) CreateIndexes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return nil
	}
	for _, idx := range eventIndexes {
		if err := s.client.EnsureIndex(ctx, models.EventLabel, idx.property, idx.unique); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, fmt.Sprintf("failed to ensure index on %s", idx.property), err)
		}
	}
	s.indexed = true
	if s.metrics != nil {
		s.metrics.IncIndexesEnsured()
	}
	s.logger.InfoContext(ctx, "audit indexes ensured", "label", models.EventLabel)
	return nil
}

func (s *Service) persist(ctx context.Context, event *models.AuditEvent, statement string, params map[string]any) (*models.AuditEvent, error) {
	record, err := models.ToRecord(event)
	if err != nil {
		// Validation failures surface before any store I/O.
		return nil, err
	}
	// The returned event must equal what a later query reconstructs, so
	// its property maps carry the normalized values.
	event.OldProperties, _ = event.OldProperties.Normalized()
	event.NewProperties, _ = event.NewProperties.Normalized()

	if params == nil {
		params = make(map[string]any, 1)
	}
	params["props"] = record

	ctx, span := s.tracer.Start(ctx, "audit.write", trace.WithAttributes(
		attribute.String("audit.event_type", string(event.EventType)),
		attribute.String("audit.namespace", event.Namespace),
	))
	start := time.Now()
	summary, err := s.client.ExecuteWrite(ctx, statement, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		if s.metrics != nil {
			s.metrics.IncWriteFailures()
		}
		s.logger.ErrorContext(ctx, "audit write failed",
			"error", err,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"namespace", event.Namespace,
		)
		return nil, dErrors.Wrap(dErrors.CodeWriteFailed, "failed to persist audit event", err)
	}
	span.End()

	if s.metrics != nil {
		s.metrics.ObserveWriteDuration(time.Since(start).Seconds())
		s.metrics.IncEventsLogged(string(event.EventType))
	}
	s.logger.DebugContext(ctx, "audit event written",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"namespace", event.Namespace,
		"nodes_created", summary.NodesCreated,
		"relationships_created", summary.RelationshipsCreated,
	)
	return event, nil
}

func (s *Service) query(ctx context.Context, name, statement string, params map[string]any) ([]*models.AuditEvent, error) {
	ctx, span := s.tracer.Start(ctx, "audit.query", trace.WithAttributes(
		attribute.String("audit.query", name),
	))
	start := time.Now()
	rows, err := s.client.ExecuteRead(ctx, statement, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		if s.metrics != nil {
			s.metrics.IncQueryFailures()
		}
		s.logger.ErrorContext(ctx, "audit query failed", "error", err, "query", name)
		return nil, dErrors.Wrap(dErrors.CodeQueryFailed, "failed to query audit history", err)
	}
	span.End()

	// Unreadable records are skipped and counted instead of aborting the
	// batch: one drifted record must not hide the rest of the history.
	events := make([]*models.AuditEvent, 0, len(rows))
	for _, row := range rows {
		stored, ok := row["event"].(map[string]any)
		if !ok {
			s.skipMalformed(ctx, name, dErrors.New(dErrors.CodeMalformedRecord, "row missing event column"))
			continue
		}
		event, err := models.FromRecord(stored)
		if err != nil {
			s.skipMalformed(ctx, name, err)
			continue
		}
		events = append(events, event)
	}

	if s.metrics != nil {
		s.metrics.ObserveQueryDuration(name, time.Since(start).Seconds())
	}
	return events, nil
}

func (s *Service) skipMalformed(ctx context.Context, query string, err error) {
	if s.metrics != nil {
		s.metrics.IncMalformedSkipped()
	}
	s.logger.WarnContext(ctx, "skipping unreadable audit record",
		"error", err,
		"query", query,
	)
}

func (s *Service) capLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}

// now returns the current time truncated to the stored resolution, so an
// event returned from a log call compares equal to the same event read
// back later. Ordering between concurrent writers is wall-clock only;
// colliding timestamps are tie-broken by event_id at query time.
func now() time.Time {
	return time.Unix(0, time.Now().UnixNano()).UTC()
}
