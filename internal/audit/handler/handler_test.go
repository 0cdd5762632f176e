package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"graphtrail/internal/audit/models"
	"graphtrail/internal/audit/service"
	"graphtrail/internal/graphstore"
	"graphtrail/internal/platform/middleware"
)

const testSigningKey = "handler-test-signing-key"

// HandlerSuite drives the query API through a real router, auth
// middleware, service, and in-memory store. Only the graph driver is
// faked; everything else is the production wiring.
type HandlerSuite struct {
	suite.Suite
	client  *graphstore.InMemoryClient
	service *service.Service
	router  chi.Router
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.client = graphstore.NewInMemory()
	s.service = service.NewService(s.client, logger)

	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestID)
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(testSigningKey, logger))
		New(s.service, logger).Register(r)
	})
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) token(namespace string) string {
	claims := middleware.AuditClaims{
		Namespace: namespace,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "handler-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	s.Require().NoError(err)
	return signed
}

func (s *HandlerSuite) request(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) logEntityCreate(entityID, namespace, name string) *models.AuditEvent {
	event, err := s.service.LogEntityChange(context.Background(), models.EntityCreated, entityID, "PERSON",
		nil, models.PropertyMap{"name": name}, namespace, "doc-1")
	s.Require().NoError(err)
	return event
}

func (s *HandlerSuite) decodeEvents(rec *httptest.ResponseRecorder) EventsResponse {
	var body EventsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) TestAuth() {
	s.Run("missing token is unauthorized", func() {
		rec := s.request(http.MethodGet, "/audit/changes/recent?namespace=default", "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("token signed with the wrong key is unauthorized", func() {
		claims := middleware.AuditClaims{Namespace: "default"}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-key"))
		s.Require().NoError(err)

		rec := s.request(http.MethodGet, "/audit/changes/recent?namespace=default", signed)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("token scoped to another namespace is forbidden", func() {
		rec := s.request(http.MethodGet, "/audit/changes/recent?namespace=default", s.token("tenant-b"))
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("all-namespaces token reads any namespace", func() {
		rec := s.request(http.MethodGet, "/audit/changes/recent?namespace=default", s.token(middleware.NamespaceAll))
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestEntityHistory() {
	event := s.logEntityCreate("e1", "default", "John")

	s.Run("returns the entity's events", func() {
		rec := s.request(http.MethodGet, "/audit/entities/e1/history?namespace=default", s.token("default"))
		s.Require().Equal(http.StatusOK, rec.Code)

		body := s.decodeEvents(rec)
		s.Equal("default", body.Namespace)
		s.Require().Equal(1, body.Count)
		s.Equal(event.EventID, body.Events[0].EventID)
		s.Equal("entity_created", body.Events[0].EventType)
		s.Equal(map[string]any{"name": "John"}, body.Events[0].NewProperties)
		s.Empty(body.Events[0].SourceID)
	})

	s.Run("unknown entity yields an empty list, not 404", func() {
		rec := s.request(http.MethodGet, "/audit/entities/ghost/history?namespace=default", s.token("default"))
		s.Require().Equal(http.StatusOK, rec.Code)
		body := s.decodeEvents(rec)
		s.Equal(0, body.Count)
		s.NotNil(body.Events)
	})

	s.Run("missing namespace parameter is a bad request", func() {
		rec := s.request(http.MethodGet, "/audit/entities/e1/history", s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("negative limit is a bad request", func() {
		rec := s.request(http.MethodGet, "/audit/entities/e1/history?namespace=default&limit=-1", s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-numeric limit is a bad request", func() {
		rec := s.request(http.MethodGet, "/audit/entities/e1/history?namespace=default&limit=ten", s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRecentChanges() {
	s.logEntityCreate("e1", "default", "John")
	s.logEntityCreate("e2", "default", "Jane")
	s.logEntityCreate("e1", "tenant-b", "Other")

	rec := s.request(http.MethodGet, "/audit/changes/recent?namespace=default&limit=1", s.token("default"))
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decodeEvents(rec)
	s.Equal(1, body.Count)
	s.Equal("default", body.Events[0].Namespace)
}

func (s *HandlerSuite) TestChangesByTimeRange() {
	event := s.logEntityCreate("e1", "default", "John")
	ts := event.Timestamp.UTC().Format(time.RFC3339Nano)

	s.Run("inclusive bounds return the event", func() {
		query := url.Values{
			"namespace": {"default"},
			"start":     {ts},
			"end":       {ts},
		}
		rec := s.request(http.MethodGet, "/audit/changes?"+query.Encode(), s.token("default"))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(1, s.decodeEvents(rec).Count)
	})

	s.Run("missing start is a bad request", func() {
		rec := s.request(http.MethodGet, "/audit/changes?namespace=default&end="+url.QueryEscape(ts), s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("non-RFC3339 start is a bad request", func() {
		query := url.Values{
			"namespace": {"default"},
			"start":     {"yesterday"},
			"end":       {ts},
		}
		rec := s.request(http.MethodGet, "/audit/changes?"+query.Encode(), s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("inverted range is a bad request", func() {
		query := url.Values{
			"namespace": {"default"},
			"start":     {event.Timestamp.Add(time.Hour).UTC().Format(time.RFC3339Nano)},
			"end":       {ts},
		}
		rec := s.request(http.MethodGet, "/audit/changes?"+query.Encode(), s.token("default"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestCreateIndexes() {
	s.Run("tenant-scoped token is forbidden", func() {
		rec := s.request(http.MethodPost, "/audit/indexes", s.token("default"))
		s.Equal(http.StatusForbidden, rec.Code)
		s.False(s.client.HasUniqueConstraint("AuditEvent", "event_id"))
	})

	s.Run("all-namespaces token ensures the indexes", func() {
		rec := s.request(http.MethodPost, "/audit/indexes", s.token(middleware.NamespaceAll))
		s.Require().Equal(http.StatusOK, rec.Code)
		s.True(s.client.HasUniqueConstraint("AuditEvent", "event_id"))
		s.True(s.client.HasIndex("AuditEvent", "timestamp"))
	})
}
