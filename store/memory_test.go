package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hauswerk/vorlage/document"
	"github.com/hauswerk/vorlage/recovery"
)

func TestMemoryCreateAndGet(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, "Mietvertrag", document.TextDocument("Hallo"))
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := mem.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mietvertrag", got.Name)
	assert.Equal(t, "Hallo", got.Content.Content[0].Content[0].Text)
}

func TestMemoryGetUnknownID(t *testing.T) {
	mem := NewMemory()

	_, err := mem.Get(context.Background(), "tpl-404")
	require.Error(t, err)

	var recErr *recovery.Error
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, recovery.TypeTemplateNotFound, recErr.Type)
	assert.Equal(t, "tpl-404", recErr.Context["templateId"])
}

func TestMemoryUniqueNames(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	_, err := mem.Create(ctx, "Kündigung", document.EmptyDocument())
	require.NoError(t, err)

	_, err = mem.Create(ctx, "kündigung", document.EmptyDocument())
	require.Error(t, err)

	var recErr *recovery.Error
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, recovery.TypeInvalidTemplateData, recErr.Type)
}

func TestMemoryUpdate(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, "Entwurf", document.EmptyDocument())
	require.NoError(t, err)

	mem.now = func() time.Time { return created.CreatedAt.Add(time.Hour) }

	updated, err := mem.Update(ctx, created.ID, "Mahnung", document.TextDocument("Zahlungserinnerung"))
	require.NoError(t, err)
	assert.Equal(t, "Mahnung", updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt))

	_, err = mem.Update(ctx, "tpl-404", "x", document.EmptyDocument())
	require.Error(t, err)
}

func TestMemoryUpdateKeepsOwnName(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, "Mietvertrag", document.EmptyDocument())
	require.NoError(t, err)

	// Updating a template without renaming it must not trip the
	// uniqueness check against itself.
	_, err = mem.Update(ctx, created.ID, "Mietvertrag", document.TextDocument("neu"))
	assert.NoError(t, err)
}

func TestMemoryListSortedByName(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	for _, name := range []string{"Zwischenablesung", "Mietvertrag", "Anlage"} {
		_, err := mem.Create(ctx, name, document.EmptyDocument())
		require.NoError(t, err)
	}

	templates, err := mem.List(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, "Anlage", templates[0].Name)
	assert.Equal(t, "Mietvertrag", templates[1].Name)
	assert.Equal(t, "Zwischenablesung", templates[2].Name)
}

func TestMemoryDelete(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, "Mietvertrag", document.EmptyDocument())
	require.NoError(t, err)

	require.NoError(t, mem.Delete(ctx, created.ID))

	_, err = mem.Get(ctx, created.ID)
	require.Error(t, err)

	err = mem.Delete(ctx, created.ID)
	require.Error(t, err)
}

func TestMemoryReturnsCopies(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	created, err := mem.Create(ctx, "Mietvertrag", document.TextDocument("original"))
	require.NoError(t, err)

	created.Content.Content[0].Content[0].Text = "mutiert"

	got, err := mem.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content.Content[0].Content[0].Text)
}

func TestMemoryCanceledContext(t *testing.T) {
	mem := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mem.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
