package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppErrorFollowsWrapChain(t *testing.T) {
	appErr := NewTransactionNotFoundError("ref_1")
	wrapped := fmt.Errorf("reconcile: %w", appErr)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeTransactionNotFound, got.Code)
	assert.True(t, got.IsNotFound())
	assert.False(t, got.IsValidation())
	assert.True(t, HasCode(wrapped, ErrCodeTransactionNotFound))
}

func TestClassification(t *testing.T) {
	cause := stderrors.New("dial tcp: i/o timeout")
	transport := NewExternalAPIError("verify_transaction", cause)
	assert.True(t, transport.IsTransport())
	assert.ErrorIs(t, transport, cause)

	dup := New(ErrCodeDuplicateParticipant, "You cannot use the same account number multiple times.")
	assert.True(t, dup.IsValidation())
	assert.False(t, dup.IsNotFound())

	quiz := New(ErrCodeQuizExpired, "quiz expired")
	assert.True(t, quiz.IsValidation())
	assert.False(t, quiz.IsTransport())
}

func TestAsAppErrorNil(t *testing.T) {
	_, ok := AsAppError(nil)
	assert.False(t, ok)
	assert.False(t, IsAppError(stderrors.New("plain")))
}
