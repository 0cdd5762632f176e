package service

import "graphtrail/internal/audit/models"

// One statement per logical operation; the store's indexes do the
// filtering and ordering, never a post-fetch pass in the service.
// event_id is the secondary sort key so events with colliding wall-clock
// timestamps come back in a stable order.

// createEntityEventStatement persists the event node and, when the
// audited entity node still exists, links it with an AUDITS_ENTITY edge
// so entity-scoped traversals reach history without an index lookup.
// Deletion events may refer to an entity that is already gone; the event
// is kept even when no edge can be created.
const createEntityEventStatement = `
CREATE (e:AuditEvent)
SET e = $props
WITH e
OPTIONAL MATCH (n:Entity {id: $entity_id, namespace: $namespace})
FOREACH (entity IN CASE WHEN n IS NULL THEN [] ELSE [n] END |
	CREATE (e)-[:AUDITS_ENTITY]->(entity))`

// createRelationshipEventStatement stores source, target, and type as
// plain properties without a graph-level edge: the audited relationship
// itself may no longer exist.
const createRelationshipEventStatement = `
CREATE (e:AuditEvent)
SET e = $props`

const entityHistoryStatement = `
MATCH (e:AuditEvent {namespace: $namespace, entity_id: $entity_id})
RETURN properties(e) AS event
ORDER BY e.timestamp ASC, e.event_id ASC
LIMIT $limit`

const recentChangesStatement = `
MATCH (e:AuditEvent {namespace: $namespace})
RETURN properties(e) AS event
ORDER BY e.timestamp DESC, e.event_id DESC
LIMIT $limit`

const timeRangeStatement = `
MATCH (e:AuditEvent {namespace: $namespace})
WHERE e.timestamp >= $start AND e.timestamp <= $end
RETURN properties(e) AS event
ORDER BY e.timestamp ASC, e.event_id ASC`

// eventIndexes are ensured by CreateIndexes. The event_id constraint is
// what makes an id collision a hard write error instead of a silent
// overwrite; the rest keep the query latency targets honest. Writes do
// not depend on any of them.
var eventIndexes = []struct {
	property string
	unique   bool
}{
	{models.FieldEventID, true},
	{models.FieldTimestamp, false},
	{models.FieldEntityID, false},
	{models.FieldNamespace, false},
	{models.FieldEventType, false},
}
