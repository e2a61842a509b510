package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "spell not found",
			expected: "NOT_FOUND: spell not found",
		},
		{
			name:     "invalid argument error",
			code:     errors.CodeInvalidArgument,
			message:  "malformed compendium",
			expected: "INVALID_ARGUMENT: malformed compendium",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Equal(tc.expected, err.Error())
			s.Equal(tc.code, err.Code)
			s.Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestWithEntity() {
	err := errors.NotFound("unknown source code").WithEntity("spell", "fireball")

	s.Equal("spell", err.Meta["entity_type"])
	s.Equal("fireball", err.Meta["slug"])
}

func (s *ErrorsTestSuite) TestEntityOf() {
	err := errors.Wrap(errors.NotFound("class missing").WithEntity("class", "artificer"), "failed to link spell")

	entityType, slug, ok := errors.EntityOf(err)
	s.True(ok)
	s.Equal("class", entityType)
	s.Equal("artificer", slug)

	_, _, ok = errors.EntityOf(fmt.Errorf("plain"))
	s.False(ok)
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("database is locked")
	wrapped := errors.Wrap(baseErr, "failed to upsert spell")

	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal("failed to upsert spell", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCodeAndCopiesMeta() {
	baseErr := errors.NotFound("record not found").WithMeta("slug", "fireball")
	wrapped := errors.Wrap(baseErr, "spell not found")
	wrapped.WithMeta("file", "spells-phb.xml")

	s.Equal(errors.CodeNotFound, wrapped.Code)
	s.Equal("fireball", wrapped.Meta["slug"])
	s.NotContains(baseErr.Meta, "file")
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeUnavailable, "redis unavailable")

	s.Equal(errors.CodeUnavailable, wrapped.Code)
	s.Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestConstructorFunctions() {
	testCases := []struct {
		name        string
		constructor func() *errors.Error
		code        errors.Code
	}{
		{"NotFound", func() *errors.Error { return errors.NotFound("test") }, errors.CodeNotFound},
		{"InvalidArgument", func() *errors.Error { return errors.InvalidArgument("test") }, errors.CodeInvalidArgument},
		{"AlreadyExists", func() *errors.Error { return errors.AlreadyExists("test") }, errors.CodeAlreadyExists},
		{"Internal", func() *errors.Error { return errors.Internal("test") }, errors.CodeInternal},
		{"Unavailable", func() *errors.Error { return errors.Unavailable("test") }, errors.CodeUnavailable},
		{"FailedPrecondition", func() *errors.Error { return errors.FailedPrecondition("test") }, errors.CodeFailedPrecondition},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.constructor()
			s.Equal(tc.code, err.Code)
			s.Equal("test", err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorIs() {
	s.True(errors.NotFound("a").Is(errors.NotFound("b")))
	s.False(errors.NotFound("a").Is(errors.InvalidArgument("a")))
}

func (s *ErrorsTestSuite) TestGetCode() {
	wrapped := errors.Wrap(errors.NotFound("test"), "wrapped")

	s.Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Equal(errors.CodeCanceled, errors.GetCode(fmt.Errorf("run: %w", context.Canceled)))
	s.Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	wrapped := errors.Wrap(errors.NotFound("user friendly message"), "wrapped message")

	s.Equal("wrapped message", errors.GetMessage(wrapped))
	s.Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestExitCode() {
	testCases := []struct {
		code     errors.Code
		expected int
	}{
		{errors.CodeOK, 0},
		{errors.CodeInvalidArgument, 2},
		{errors.CodeNotFound, 2},
		{errors.CodeCanceled, 130},
		{errors.CodeInternal, 1},
		{errors.CodeFailedPrecondition, 1},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.ExitCode())
		})
	}
}

func (s *ErrorsTestSuite) TestGRPCConversionRoundTripsMeta() {
	err := errors.NotFound("class not found").WithEntity("class", "wizard")

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Equal(codes.NotFound, st.Code())
	s.Equal("class not found", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.Equal(errors.CodeNotFound, errors.GetCode(back))
	s.Equal("wizard", errors.GetMeta(back)["slug"])
}

func (s *ErrorsTestSuite) TestFromGRPCErrorMapsCodes() {
	err := errors.FromGRPCError(status.Error(codes.OutOfRange, "level 21"))
	s.Equal(errors.CodeInvalidArgument, errors.GetCode(err))
	s.Equal("level 21", errors.GetMessage(err))
}
