package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("visits")

	first, err := m.Insert(ctx, "visits", Row{"company": "Atlas"})
	require.NoError(t, err)
	second, err := m.Insert(ctx, "visits", Row{"company": "Volt"})
	require.NoError(t, err)
	assert.NotEmpty(t, first["id"])
	assert.NotEqual(t, first["id"], second["id"])
	assert.Contains(t, first, "created_at")

	updated, err := m.Update(ctx, "visits", first["id"].(string), Row{"company": "Atlas Elevadores"})
	require.NoError(t, err)
	assert.Equal(t, first["id"], updated["id"])
	assert.Equal(t, first["created_at"], updated["created_at"])

	rows, err := m.Select(ctx, "visits")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Atlas Elevadores", rows[0]["company"])
	assert.Equal(t, "Volt", rows[1]["company"])

	require.NoError(t, m.Delete(ctx, "visits", first["id"].(string)))
	rows, err = m.Select(ctx, "visits")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second["id"], rows[0]["id"])
}

func TestMemoryReturnsDescriptors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("visits")

	_, err := m.Update(ctx, "visits", "missing", Row{})
	var descriptor *Error
	require.ErrorAs(t, err, &descriptor)
	assert.Equal(t, CodeNotFound, descriptor.Code)

	err = m.Delete(ctx, "visits", "missing")
	require.ErrorAs(t, err, &descriptor)
	assert.Equal(t, CodeNotFound, descriptor.Code)

	_, err = m.Select(ctx, "avcb_services")
	require.ErrorAs(t, err, &descriptor)
	assert.Equal(t, CodeUnknownTable, descriptor.Code)
}

func TestMemorySelectReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("visits")
	_, err := m.Insert(ctx, "visits", Row{"company": "Atlas"})
	require.NoError(t, err)

	rows, err := m.Select(ctx, "visits")
	require.NoError(t, err)
	rows[0]["company"] = "changed"

	rows, err = m.Select(ctx, "visits")
	require.NoError(t, err)
	assert.Equal(t, "Atlas", rows[0]["company"])
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	descriptor := &Error{Code: "23505", Message: "duplicate key"}
	assert.Same(t, descriptor, AsError(descriptor))

	converted := AsError(assert.AnError)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, assert.AnError.Error(), converted.Message)
}
