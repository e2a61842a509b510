package errors_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestValidationErrorIsSorted() {
	ve := errors.NewValidationError()
	ve.AddFieldError("store", "is required")
	ve.AddFieldError("cache", "is required")

	s.Equal("validation failed: cache: is required; store: is required", ve.Error())

	err := ve.ToError()
	s.Equal(errors.CodeInvalidArgument, err.Code)
	s.NotNil(err.Meta["validation_errors"])
}

func (s *ValidationTestSuite) TestValidationBuilder() {
	vb := errors.NewValidationBuilder()
	vb.Fieldf("level", "must be between %d and %d", 1, 20).
		RequiredField("class").
		RequiredIf(true, "store").
		RequiredIf(false, "logger")

	err := vb.Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "store: is required")
	s.NotContains(err.Error(), "logger")
}

func (s *ValidationTestSuite) TestValidationBuilderNoErrors() {
	s.NoError(errors.NewValidationBuilder().Build())
}

func (s *ValidationTestSuite) TestHelpers() {
	testCases := []struct {
		name    string
		apply   func(vb *errors.ValidationBuilder)
		wantErr bool
	}{
		{"required ok", func(vb *errors.ValidationBuilder) { errors.ValidateRequired("name", "Fireball", vb) }, false},
		{"required blank", func(vb *errors.ValidationBuilder) { errors.ValidateRequired("name", "  ", vb) }, true},
		{"range ok", func(vb *errors.ValidationBuilder) { errors.ValidateRange("level", 9, 0, 9, vb) }, false},
		{"range high", func(vb *errors.ValidationBuilder) { errors.ValidateRange("level", 10, 0, 9, vb) }, true},
		{"enum ok", func(vb *errors.ValidationBuilder) { errors.ValidateEnum("mode", "gold", []string{"gold", "equipment"}, vb) }, false},
		{"enum bad", func(vb *errors.ValidationBuilder) { errors.ValidateEnum("mode", "silver", []string{"gold", "equipment"}, vb) }, true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			tc.apply(vb)
			if tc.wantErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}
