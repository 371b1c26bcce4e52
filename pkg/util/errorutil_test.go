package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessageHidesInternals(t *testing.T) {
	cause := errors.New("pq: connection refused 10.0.0.3:5432")

	assert.Equal(t, "could not retrieve the data needed to continue",
		UserMessage(NewPrerequisiteFetchError("history fetch", cause)))
	assert.Equal(t, "this channel is not a ticket", UserMessage(NewNotATicket("123")))
	assert.Equal(t, "something went wrong", UserMessage(cause))
	assert.NotContains(t, UserMessage(NewInternalError(cause)), "10.0.0.3")
}

func TestIsCodeUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("handling interaction: %w", NewConflict("ticket is already closing"))
	assert.True(t, IsCode(err, CodeConflict))
	assert.False(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(nil, CodeConflict))
}

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewValidationError("product name is required", map[string]any{"field": "product"})
	converted := ToDomainError(original)
	assert.Equal(t, CodeValidation, converted.Code)
	assert.Equal(t, "product", converted.Details["field"])
}
