package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cogmem/cogmem-go/pkg/core"
)

func TestMemoryError_Format(t *testing.T) {
	err := &core.MemoryError{
		Op:  "Add",
		Err: core.ErrEmbeddingUnavailable,
	}

	assert.Equal(t, "cogmem: Add: embedding provider unavailable", err.Error())
}

func TestMemoryError_Unwrap(t *testing.T) {
	err := core.NewMemoryError("Search", core.ErrInvalidInput)

	assert.ErrorIs(t, err, core.ErrInvalidInput)

	var memErr *core.MemoryError
	assert.True(t, errors.As(err, &memErr))
	assert.Equal(t, "Search", memErr.Op)
}

func TestNewMemoryError_Nil(t *testing.T) {
	assert.Nil(t, core.NewMemoryError("Add", nil))
}

func TestNewMemoryError_WrapsArbitraryErrors(t *testing.T) {
	underlying := errors.New("connection refused")
	err := core.NewMemoryError("Get", underlying)

	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "cogmem: Get:")
}
