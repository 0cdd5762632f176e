package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: These are core error primitives used at every trust boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeMalformedRecord, Message: "stored record missing event_type"}
		s.Equal("stored record missing event_type", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeWriteFailed}
		s.Equal("audit_write_failed", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeUnavailable, Message: "store unreachable", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeValidation, Message: "namespace is required"}
		err2 := &Error{Code: CodeValidation, Message: "entity_id is required"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeWriteFailed}
		err2 := &Error{Code: CodeQueryFailed}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := errors.New("not found")
		s.False(err1.Is(err2))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeConflict, Message: "original"}
		wrapped := &Error{Code: CodeWriteFailed, Message: "wrapped", Err: inner}
		target := &Error{Code: CodeConflict}

		// errors.Is should find the inner error through the chain
		s.True(errors.Is(wrapped, target))
	})
}

func (s *DomainErrorsSuite) TestNew() {
	s.Run("creates error with code and message", func() {
		err := New(CodeInvalidRange, "start_time is after end_time")
		s.Require().NotNil(err)

		var domainErr *Error
		s.Require().True(errors.As(err, &domainErr))
		s.Equal(CodeInvalidRange, domainErr.Code)
		s.Equal("start_time is after end_time", domainErr.Message)
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code when wrapping domain error", func() {
		original := New(CodeConflict, "event id already exists")
		wrapped := Wrap(CodeWriteFailed, "failed to persist audit event", original)

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		// Should preserve CodeConflict, not CodeWriteFailed
		s.Equal(CodeConflict, domainErr.Code)
		s.Equal("failed to persist audit event", domainErr.Message)
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		original := errors.New("session expired")
		wrapped := Wrap(CodeQueryFailed, "failed to read history", original)

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeQueryFailed, domainErr.Code)
		s.Equal("failed to read history", domainErr.Message)
	})

	s.Run("wrapped error is accessible via Unwrap", func() {
		original := errors.New("root cause")
		wrapped := Wrap(CodeInternal, "service error", original)

		s.True(errors.Is(wrapped, original))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("returns true for matching code", func() {
		err := New(CodeMalformedRecord, "unknown event type")
		s.True(HasCode(err, CodeMalformedRecord))
	})

	s.Run("returns false for non-matching code", func() {
		err := New(CodeMalformedRecord, "unknown event type")
		s.False(HasCode(err, CodeInternal))
	})

	s.Run("returns false for non-domain error", func() {
		err := errors.New("regular error")
		s.False(HasCode(err, CodeNotFound))
	})

	s.Run("finds code through error chain", func() {
		inner := New(CodeUnavailable, "original")
		wrapped := Wrap(CodeWriteFailed, "wrapped", inner)
		// HasCode should find CodeUnavailable since Wrap preserves the original code
		s.True(HasCode(wrapped, CodeUnavailable))
	})

	s.Run("returns false for nil error", func() {
		s.False(HasCode(nil, CodeNotFound))
	})
}
