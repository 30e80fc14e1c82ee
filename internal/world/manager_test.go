package world

import (
	"context"
	"testing"
	"time"

	"sanguigore/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-billy.v4/memfs"
)

func newTestManager(t *testing.T) (*Manager, *snapshot.Store) {
	t.Helper()
	cfg := testConfig()
	store := snapshot.NewStore(memfs.New(), nil)
	return NewManager(cfg, NewGenerator(cfg, nil, nil), store, nil), store
}

func TestLoadOrGenerateWithoutSave(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Nil(t, m.Current())

	w, loaded, err := m.LoadOrGenerate(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Same(t, w, m.Current())
	assert.Equal(t, int64(42), w.Seed)
}

func TestSaveThenResume(t *testing.T) {
	m, store := newTestManager(t)
	_, err := m.Regenerate(context.Background(), 7)
	require.NoError(t, err)
	m.Clock().Restore(20*time.Hour, 90*time.Second)
	require.NoError(t, m.SaveGame())

	// a second session over the same store resumes instead of generating
	cfg := testConfig()
	resumed := NewManager(cfg, NewGenerator(cfg, nil, nil), store, nil)
	w, loaded, err := resumed.LoadOrGenerate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, int64(7), w.Seed)
	assert.Equal(t, m.Current().Colors, w.Colors)
	assert.Equal(t, 20*time.Hour, resumed.Clock().GameTime())
	assert.Equal(t, 90*time.Second, resumed.Clock().Elapsed())
}

func TestNoWorldErrors(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.SaveGame(), ErrNoWorld)
	assert.ErrorIs(t, m.ExportWorld(), ErrNoWorld)
	_, err := m.SectionAt(0, 0)
	assert.ErrorIs(t, err, ErrNoWorld)
	assert.ErrorIs(t, m.LoadGame(), snapshot.ErrNotFound)
}

func TestExportWorld(t *testing.T) {
	m, store := newTestManager(t)
	_, err := m.Regenerate(context.Background(), 11)
	require.NoError(t, err)
	require.NoError(t, m.ExportWorld())

	w, err := store.LoadWorld(testConfig().Storage.WorldFile)
	require.NoError(t, err)
	assert.Equal(t, m.Current().Heights, w.Heights)
}

func TestSectionAt(t *testing.T) {
	m, _ := newTestManager(t)
	w, err := m.Regenerate(context.Background(), 3)
	require.NoError(t, err)

	sec, err := m.SectionAt(13, 4)
	require.NoError(t, err)
	assert.True(t, sec.IsSegment())
	assert.Equal(t, snapshot.Segment{X: 10, Y: 0, Width: 10, Height: 10}, sec.Segment)
	assert.Equal(t, w.Colors.At(10, 0), sec.Colors.At(0, 0))

	// the last column of sections would overflow a 48-wide map and shifts back
	edge, err := m.SectionAt(47, 31)
	require.NoError(t, err)
	assert.Equal(t, 38, edge.Segment.X)
	assert.Equal(t, 22, edge.Segment.Y)

	_, err = m.SectionAt(48, 0)
	assert.Error(t, err)
}
