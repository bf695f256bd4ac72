package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cogmem/cogmem-go/pkg/core"
)

func TestNamespaceConstructors(t *testing.T) {
	assert.Equal(t, "tenant_a:coach", core.AgentNamespace("tenant_a", "coach").String())
	assert.Equal(t, "tenant_a:coach:thread:t42", core.ThreadNamespace("tenant_a", "coach", "t42").String())
	assert.Equal(t, "tenant_a:coach:user:u1", core.UserNamespace("tenant_a", "coach", "u1").String())
}

func TestNamespace_DistinctLevels(t *testing.T) {
	agent := core.AgentNamespace("t", "a")
	thread := core.ThreadNamespace("t", "a", "x")
	user := core.UserNamespace("t", "a", "x")

	assert.NotEqual(t, agent, thread)
	assert.NotEqual(t, agent, user)
	assert.NotEqual(t, thread, user)
}

func TestInteractionResult_Ok(t *testing.T) {
	result := &core.InteractionResult{}
	assert.True(t, result.Ok())

	result.UserErr = errors.New("store down")
	assert.False(t, result.Ok())

	result.UserErr = nil
	result.AssistantErr = errors.New("store down")
	assert.False(t, result.Ok())
}
