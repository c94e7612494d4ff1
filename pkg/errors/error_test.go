package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNew() {
	err := New(ErrCodeParse, "malformed date")
	suite.Equal(ErrCodeParse, err.Code)
	suite.Equal("malformed date", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[102] malformed date", err.Error())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeValidation, "row %d: null field %q", 3, "Close")
	suite.Equal(ErrCodeValidation, err.Code)
	suite.Contains(err.Error(), `row 3: null field "Close"`)
}

func (suite *ErrorTestSuite) TestWrapAndUnwrap() {
	cause := fmt.Errorf("disk error")
	err := Wrap(ErrCodeQueryFailed, "failed to execute query", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Contains(err.Error(), "disk error")
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeEmptyColumn, "all values null")
	suite.Equal(ErrCodeEmptyColumn, GetCode(err))
	suite.Equal(ErrCodeUnknown, GetCode(fmt.Errorf("plain error")))
}

func (suite *ErrorTestSuite) TestHasCodeThroughChain() {
	inner := New(ErrCodeLengthMismatch, "600 vs 599")
	outer := Wrap(ErrCodeLengthMismatch, "stage evaluate failed", inner)
	suite.True(HasCode(outer, ErrCodeLengthMismatch))
	suite.False(HasCode(outer, ErrCodeParse))
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(2, 1, "split", "split requires at least %d records, got %d", 2, 1)
	suite.Equal(2, err.Required)
	suite.Equal(1, err.Actual)
	suite.Equal("split", err.Stage)
	suite.True(IsInsufficientDataError(err))

	wrapped := Wrap(ErrCodeInsufficientData, "stage split failed", err)
	suite.True(IsInsufficientDataError(wrapped))
	suite.False(IsInsufficientDataError(fmt.Errorf("plain")))
}
