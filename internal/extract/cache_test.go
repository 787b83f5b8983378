package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docmark/internal/model"
)

type fakePageStore struct {
	pages   map[string]cachedPage
	getErr  error
	putErr  error
	getHits int
}

func newFakePageStore() *fakePageStore {
	return &fakePageStore{pages: map[string]cachedPage{}}
}

func (f *fakePageStore) GetPage(_ context.Context, fp string) (string, model.ExtractionSource, bool, error) {
	f.getHits++
	if f.getErr != nil {
		return "", "", false, f.getErr
	}
	p, ok := f.pages[fp]
	return p.text, p.source, ok, nil
}

func (f *fakePageStore) PutPage(_ context.Context, fp, text string, source model.ExtractionSource) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.pages[fp] = cachedPage{text: text, source: source}
	return nil
}

func TestFingerprint_PrefersNativeText(t *testing.T) {
	withText := Fingerprint("some native text", []byte{1, 2, 3})
	differentImage := Fingerprint("some native text", []byte{9, 9, 9})
	assert.Equal(t, withText, differentImage)

	assert.Len(t, withText, 16)
}

func TestFingerprint_FallsBackToImage(t *testing.T) {
	a := Fingerprint("   ", []byte{1, 2, 3})
	b := Fingerprint("", []byte{1, 2, 3})
	c := Fingerprint("", []byte{4, 5, 6})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFingerprint_WhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, Fingerprint("text", nil), Fingerprint("  text  ", nil))
}

func TestCache_MemoryTier(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	_, _, ok := c.Get(ctx, "abc")
	assert.False(t, ok)

	c.Put(ctx, "abc", "cached text", model.SourceVisionModel)

	text, source, ok := c.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, "cached text", text)
	assert.Equal(t, model.SourceVisionModel, source)
	assert.Equal(t, 1, c.Len())
}

func TestCache_StoreTierBackfillsMemory(t *testing.T) {
	st := newFakePageStore()
	st.pages["fp1"] = cachedPage{text: "persisted", source: model.SourceVisionModel}

	c := NewCache(st)
	ctx := context.Background()

	text, source, ok := c.Get(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, "persisted", text)
	assert.Equal(t, model.SourceVisionModel, source)

	// Second lookup is served from memory.
	_, _, ok = c.Get(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, 1, st.getHits)
}

func TestCache_StoreFailuresAreMisses(t *testing.T) {
	st := newFakePageStore()
	st.getErr = eris.New("db locked")
	st.putErr = eris.New("db locked")

	c := NewCache(st)
	ctx := context.Background()

	_, _, ok := c.Get(ctx, "fp1")
	assert.False(t, ok)

	// Put still lands in memory even when the store write fails.
	c.Put(ctx, "fp1", "text", model.SourceTraditionalOCR)
	st.getErr = nil
	text, _, ok := c.Get(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, "text", text)
}

func TestCache_Reset(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	c.Put(ctx, "fp1", "text", model.SourceVisionModel)
	c.Reset()

	assert.Equal(t, 0, c.Len())
	_, _, ok := c.Get(ctx, "fp1")
	assert.False(t, ok)
}

func TestCache_PutWritesThrough(t *testing.T) {
	st := newFakePageStore()
	c := NewCache(st)
	ctx := context.Background()

	c.Put(ctx, "fp2", "written", model.SourceVisionModel)
	assert.Equal(t, "written", st.pages["fp2"].text)
}
