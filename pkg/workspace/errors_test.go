package workspace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "invalid provider",
			err:      InvalidProvider("GetWorkspaceHandle", "team"),
			expected: "GetWorkspaceHandle: provider team: invalid provider",
		},
		{
			name:     "invalid handle with detail",
			err:      InvalidHandle("RemoveRESTCollection", "collection", "is invalid (COLLECTION_DOES_NOT_EXIST)"),
			expected: "RemoveRESTCollection: collection handle is invalid (COLLECTION_DOES_NOT_EXIST): invalid handle",
		},
		{
			name: "provider error",
			err: &Error{
				Op:         "CreateRESTRequest",
				Kind:       KindProvider,
				ProviderID: "personal",
				Err:        NotFoundf(ErrCollectionNotFound, "c1"),
			},
			expected: `CreateRESTRequest: provider personal: collection not found: "c1"`,
		},
		{
			name:     "no wrapped error",
			err:      &Error{Op: "Op", Kind: KindInvalidHandle},
			expected: "Op: INVALID_HANDLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Classification(t *testing.T) {
	providerErr := ProviderError("UpdateRESTRequest", "personal", NotFoundf(ErrRequestNotFound, "r1"))
	wrapped := fmt.Errorf("ui: %w", providerErr)

	assert.True(t, IsProviderError(wrapped))
	assert.False(t, IsInvalidHandle(wrapped))
	assert.ErrorIs(t, wrapped, ErrRequestNotFound)

	assert.True(t, IsInvalidProvider(InvalidProvider("op", "x")))
	assert.ErrorIs(t, InvalidProvider("op", "x"), ErrInvalidProvider)

	assert.True(t, IsInvalidHandle(InvalidHandle("op", "request", "")))
	assert.ErrorIs(t, InvalidHandle("op", "request", ""), ErrInvalidHandle)

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Nil(t, ProviderError("op", "p", nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "INVALID_PROVIDER", KindInvalidProvider.String())
	assert.Equal(t, "INVALID_HANDLE", KindInvalidHandle.String())
	assert.Equal(t, "PROVIDER_ERROR", KindProvider.String())
	assert.Equal(t, "UNKNOWN", Kind(42).String())
}
