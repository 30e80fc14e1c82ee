package snapshot

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"sanguigore/internal/grid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-billy.v4/memfs"
)

func sampleWorld(t *testing.T, w, h int) *World {
	t.Helper()
	world, err := New(42, w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(y*w+x) / float64(w*h)
			world.Heights.Set(x, y, v)
			world.Moisture.Set(x, y, 1-v)
			world.Temperature.Set(x, y, v/3)
			world.Biomes.Set(x, y, "Hills")
			world.Colors.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	world.Settlements = []grid.Point{{X: 1, Y: 1}, {X: w - 2, Y: h - 2}}
	return world
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(1, 0, 5)
	assert.True(t, errors.Is(err, grid.ErrInvalidDimensions))
}

func TestSubRegionShiftsBackInside(t *testing.T) {
	world := sampleWorld(t, 60, 40)

	seg, err := world.SubRegion(50, 30, 25, 25)
	require.NoError(t, err)
	assert.True(t, seg.IsSegment())
	assert.Equal(t, Segment{X: 35, Y: 15, Width: 25, Height: 25}, seg.Segment)
	assert.Equal(t, world.Colors.At(35, 15), seg.Colors.At(0, 0))
	assert.Equal(t, world.Heights.At(59, 39), seg.Heights.At(24, 24))
	assert.Equal(t, []grid.Point{{X: 23, Y: 23}}, seg.Settlements)
}

func TestSubRegionLargerThanMapFillsBlack(t *testing.T) {
	world := sampleWorld(t, 10, 10)

	seg, err := world.SubRegion(0, 0, 25, 25)
	require.NoError(t, err)
	assert.Equal(t, 0, seg.Segment.X)
	assert.Equal(t, color.RGBA{A: 255}, seg.Colors.At(20, 20))
	assert.Equal(t, world.Colors.At(9, 9), seg.Colors.At(9, 9))
}

func TestImageMatchesColors(t *testing.T) {
	world := sampleWorld(t, 8, 6)
	img := world.Image()
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, world.Colors.At(5, 3), img.RGBAAt(5, 3))
}

func TestWorldRoundTripIsLossless(t *testing.T) {
	store := NewStore(memfs.New(), nil)
	world := sampleWorld(t, 12, 9)

	require.NoError(t, store.SaveWorld("world.json", world))
	assert.True(t, store.Exists("world.json"))
	assert.False(t, store.Exists("world.json.tmp"))

	back, err := store.LoadWorld("world.json")
	require.NoError(t, err)
	assert.Equal(t, world.Seed, back.Seed)
	assert.Equal(t, world.Settlements, back.Settlements)
	world.Heights.Each(func(x, y int, v float64) {
		require.Equal(t, v, back.Heights.At(x, y))
		require.Equal(t, world.Moisture.At(x, y), back.Moisture.At(x, y))
		require.Equal(t, world.Temperature.At(x, y), back.Temperature.At(x, y))
		require.Equal(t, world.Biomes.At(x, y), back.Biomes.At(x, y))
		require.Equal(t, world.Colors.At(x, y), back.Colors.At(x, y))
	})
}

func TestGameRoundTrip(t *testing.T) {
	store := NewStore(memfs.New(), nil)
	gs := &GameState{
		World:       sampleWorld(t, 5, 5),
		GameTime:    13*time.Hour + 5*time.Minute,
		ElapsedTime: 90 * time.Second,
		TileSize:    2,
	}
	require.NoError(t, store.SaveGame("saved_game.json", gs))
	// Saving twice replaces the previous file.
	require.NoError(t, store.SaveGame("saved_game.json", gs))

	back, err := store.LoadGame("saved_game.json")
	require.NoError(t, err)
	assert.Equal(t, gs.GameTime, back.GameTime)
	assert.Equal(t, gs.ElapsedTime, back.ElapsedTime)
	assert.Equal(t, 2, back.TileSize)
	assert.Equal(t, gs.World.Colors.At(4, 4), back.World.Colors.At(4, 4))
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(memfs.New(), nil)
	_, err := store.LoadGame("nope.json")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.LoadWorld("nope.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("bad.json")
	require.NoError(t, err)
	_, err = f.Write([]byte(`{"width": 2, "height": 2, "heights": {"width": 2, "height": 2, "cells": [1]}}`))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = NewStore(fs, nil).LoadWorld("bad.json")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSaveRejectsMismatchedGrids(t *testing.T) {
	world := sampleWorld(t, 4, 4)
	world.Colors = grid.MustNew[color.RGBA](3, 4)
	err := NewStore(memfs.New(), nil).SaveWorld("w.json", world)
	assert.Error(t, err)
}
