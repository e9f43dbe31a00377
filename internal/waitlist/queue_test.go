package waitlist

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
	"chairline/backend/internal/store/jsonfile"
)

func newQueue(t *testing.T) (*Queue, store.Substrate) {
	t.Helper()
	sub, err := jsonfile.NewWithFs(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	q := New(sub, store.Options{})
	q.Load(context.Background())
	return q, sub
}

func entryFor(name string) domain.WaitingEntry {
	return domain.WaitingEntry{
		Client:  domain.Client{ID: 1, Name: name},
		Service: domain.Service{ID: 1, Entry: domain.CatalogHaircut},
		Slot:    "02/10/2032 13:30",
		Status:  domain.StatusScheduled,
	}
}

func TestQueue_FIFO(t *testing.T) {
	q, _ := newQueue(t)

	a := q.Enqueue(entryFor("A"))
	b := q.Enqueue(entryFor("B"))
	c := q.Enqueue(entryFor("C"))
	assert.Equal(t, domain.StatusWaiting, a.Status)
	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.DequeueFront()
		require.True(t, ok)
		assert.Equal(t, want, got.Client.Name)
	}

	_, ok := q.DequeueFront()
	assert.False(t, ok)
}

func TestQueue_PushFrontRestoresHead(t *testing.T) {
	q, _ := newQueue(t)
	q.Enqueue(entryFor("A"))
	q.Enqueue(entryFor("B"))

	head, ok := q.DequeueFront()
	require.True(t, ok)
	q.PushFront(head)

	got, ok := q.DequeueFront()
	require.True(t, ok)
	assert.Equal(t, head.ID, got.ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_EnqueueDoesNotPersistUntilAsked(t *testing.T) {
	ctx := context.Background()
	q, sub := newQueue(t)
	q.Enqueue(entryFor("A"))
	q.Enqueue(entryFor("B"))

	fresh := New(sub, store.Options{})
	assert.Equal(t, 0, fresh.Load(ctx))

	require.NoError(t, q.Persist(ctx))

	fresh = New(sub, store.Options{})
	require.Equal(t, 2, fresh.Load(ctx))
	names := []string{}
	for _, e := range fresh.List() {
		names = append(names, e.Client.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)

	next := fresh.Enqueue(entryFor("C"))
	assert.Equal(t, int64(3), next.ID)
}

func TestQueue_ListIsCopy(t *testing.T) {
	q, _ := newQueue(t)
	assert.NotNil(t, q.List())

	q.Enqueue(entryFor("A"))
	list := q.List()
	list[0].Client.Name = "mutated"

	got, _ := q.DequeueFront()
	assert.Equal(t, "A", got.Client.Name)
}
