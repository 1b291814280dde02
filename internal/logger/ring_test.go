package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func ringLogger(ring *Ring) *zap.Logger {
	return zap.New(newRingCore(ring, zapcore.DebugLevel))
}

func TestRingCapturesEntries(t *testing.T) {
	ring := NewRing(8)
	log := ringLogger(ring)

	log.Info("first")
	log.Warn("second")

	entries := ring.Recent(10)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, uint64(2), ring.Seq())
}

func TestRingWrapsKeepingNewest(t *testing.T) {
	ring := NewRing(3)
	log := ringLogger(ring)

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		log.Info(msg)
	}

	entries := ring.Recent(3)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].Message)
	assert.Equal(t, "e", entries[2].Message)
}

func TestRingRecordsComponent(t *testing.T) {
	ring := NewRing(4)
	log := ringLogger(ring).With(zap.String("component", "feed"))

	log.Info("connected")
	log.Info("resync", zap.String("component", "snapshot"))

	entries := ring.Recent(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "feed", entries[0].Component)
	assert.Equal(t, "snapshot", entries[1].Component)
}

func TestRingRecentSmallerWindow(t *testing.T) {
	ring := NewRing(8)
	log := ringLogger(ring)

	for _, msg := range []string{"a", "b", "c", "d"} {
		log.Info(msg)
	}

	entries := ring.Recent(2)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Message)
	assert.Equal(t, "d", entries[1].Message)
}
