package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestCollectionLoadAbsentIsZero(t *testing.T) {
	c := NewCollection[[]item](NewMemoryStore(), KeyProducts)

	items, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, items)

	ok, err := c.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectionUpdateIsAtomicPerCall(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[[]item](NewMemoryStore(), KeyProducts)
	require.NoError(t, c.Save(ctx, []item{{ID: "p1"}}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Update(ctx, func(items *[]item) error {
				(*items)[0].Qty++
				return nil
			})
		}()
	}
	wg.Wait()

	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, items[0].Qty)
}

func TestCollectionUpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[[]item](NewMemoryStore(), KeyProducts)
	require.NoError(t, c.Save(ctx, []item{{ID: "p1", Qty: 3}}))

	boom := errors.New("boom")
	err := c.Update(ctx, func(items *[]item) error {
		(*items)[0].Qty = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Qty)
}

func TestCollectionCorruptDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, KeyProducts, []byte(`{not json`)))

	_, err := NewCollection[[]item](s, KeyProducts).Load(ctx)
	assert.Error(t, err)
}
