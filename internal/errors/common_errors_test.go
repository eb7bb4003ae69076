package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("odds out of range"),
			expected: "[VALIDATION] odds out of range",
		},
		{
			name:     "with cause",
			err:      NewStorageError("failed to write series", fmt.Errorf("disk full")),
			expected: "[STORAGE] failed to write series: disk full",
		},
		{
			name:     "duplicate date",
			err:      NewDuplicateDateError("2024-09-02"),
			expected: "[DUPLICATE_DATE] a snapshot for 2024-09-02 is already stored: snapshot for date already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := fmt.Errorf("append: %w", NewStorageError("failed to rename", cause))

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)

	assert.True(t, errors.Is(NewDuplicateDateError("2024-09-01"), ErrDuplicateDate))
	assert.True(t, errors.Is(NewStorageError("bad column", ErrSchemaMismatch), ErrSchemaMismatch))
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeStorage, Message: "inconsistent"}
	err.WithContext("field", "pennsylvania_pct_of_us_market").WithContext("date", "2024-09-02")

	assert.Equal(t, "pennsylvania_pct_of_us_market", err.Context["field"])
	assert.Equal(t, "2024-09-02", err.Context["date"])
	assert.Equal(t, "2024-09-02", NewDuplicateDateError("2024-09-02").Context["date"])
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{name: "storage", err: NewStorageError("m", cause), want: ErrTypeStorage},
		{name: "derivation", err: NewDerivationError("m", cause), want: ErrTypeDerivation},
		{name: "network", err: NewNetworkError("m", cause), want: ErrTypeNetwork},
		{name: "parsing", err: NewParsingError("m", cause), want: ErrTypeParsing},
		{name: "config", err: NewConfigError("m", cause), want: ErrTypeConfig},
		{name: "not found", err: NewNotFoundError("series"), want: ErrTypeNotFound},
		{name: "duplicate", err: NewDuplicateDateError("2024-01-01"), want: ErrTypeDuplicateDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
	assert.Equal(t, "series not found", NewNotFoundError("series").Message)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeDerivation, TypeOf(fmt.Errorf("wrap: %w", NewDerivationError("nan", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
	assert.True(t, IsType(NewNetworkError("timeout", nil), ErrTypeNetwork))
	assert.False(t, IsType(NewNetworkError("timeout", nil), ErrTypeStorage))
}
