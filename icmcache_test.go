package icclu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BuildsOnce(t *testing.T) {
	obs := &countingObserver{}
	opts := testOptions()
	opts.Observer = obs
	c := NewCache(opts)
	defer c.Close()

	p := matrixProfile(SpaceXYZ, 2.2)
	req := Request{Func: FuncFwd, Intent: IntentRelative}

	var wg sync.WaitGroup
	got := make([]*LookupObject, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lu, err := c.Get(t.Context(), "display", p, req)
			assert.NoError(t, err)
			got[i] = lu
		}()
	}
	wg.Wait()

	assert.Len(t, obs.builds, 1)
	assert.Equal(t, 1, c.Len())
	for _, lu := range got {
		assert.Same(t, got[0], lu)
	}
}

func TestCache_KeysByRequest(t *testing.T) {
	c := NewCache(testOptions())
	defer c.Close()
	p := matrixProfile(SpaceXYZ, 2.2)

	fwd, err := c.Get(t.Context(), "display", p, Request{Func: FuncFwd})
	require.NoError(t, err)
	bwd, err := c.Get(t.Context(), "display", p, Request{Func: FuncBwd})
	require.NoError(t, err)
	assert.NotSame(t, fwd, bwd)

	_, err = c.Get(t.Context(), "gray", monoProfile(SpaceLab, 2), Request{Func: FuncFwd})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	c.Purge("display")
	assert.Equal(t, 1, c.Len())
	assert.Nil(t, fwd.Stage(StageLookup), "purged objects are released")

	c.Close()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	obs := &countingObserver{}
	opts := testOptions()
	opts.Observer = obs
	c := NewCache(opts)
	defer c.Close()

	empty := NewProfile(Header{Class: ClassDisplay, ColorSpace: SpaceRGB, PCS: SpaceXYZ, Illuminant: D50})
	for range 2 {
		lu, err := c.Get(t.Context(), "empty", empty, Request{Func: FuncFwd})
		assert.Nil(t, lu)
		assert.ErrorIs(t, err, ErrNoTransform)
	}
	assert.Equal(t, 0, c.Len())
	assert.Len(t, obs.builds, 2)
}
