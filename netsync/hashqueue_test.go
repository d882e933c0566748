// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func TestHashQueueChainAdvancesOneStageAtATime(t *testing.T) {
	c := NewHashQueueChain()
	hash := chainhash.Hash{1}
	require.NoError(t, c.Schedule(hash))
	require.Equal(t, StageScheduled, c.Stage(hash))

	now := time.Now()
	require.Error(t, c.Advance(hash, StageVerifying, now, now), "cannot skip a stage")

	require.NoError(t, c.Advance(hash, StageRequested, now, now.Add(time.Minute)))
	require.Equal(t, StageRequested, c.Stage(hash))
	require.Equal(t, 0, c.Len(StageScheduled))
	require.Equal(t, 1, c.Len(StageRequested))

	require.NoError(t, c.Advance(hash, StageVerifying, now, time.Time{}))
	require.NoError(t, c.Advance(hash, StageStored, time.Time{}, time.Time{}))
	require.Equal(t, StageStored, c.Stage(hash))
}

func TestHashQueueChainRetreatReturnsToScheduled(t *testing.T) {
	c := NewHashQueueChain()
	hash := chainhash.Hash{2}
	require.NoError(t, c.Schedule(hash))
	now := time.Now()
	require.NoError(t, c.Advance(hash, StageRequested, now, now.Add(time.Second)))

	require.NoError(t, c.Retreat(hash))
	require.Equal(t, StageScheduled, c.Stage(hash))
	_, ok := c.Deadline(hash)
	require.False(t, ok)
}

func TestHashQueueChainFrontIsFIFO(t *testing.T) {
	c := NewHashQueueChain()
	first, second := chainhash.Hash{1}, chainhash.Hash{2}
	require.NoError(t, c.Schedule(first))
	require.NoError(t, c.Schedule(second))

	hash, ok := c.Front(StageScheduled)
	require.True(t, ok)
	require.Equal(t, first, hash)

	require.NoError(t, c.Advance(first, StageRequested, time.Now(), time.Time{}))
	hash, ok = c.Front(StageScheduled)
	require.True(t, ok)
	require.Equal(t, second, hash)
}

func TestHashQueueChainRemoveDropsTracking(t *testing.T) {
	c := NewHashQueueChain()
	hash := chainhash.Hash{3}
	require.NoError(t, c.Schedule(hash))
	c.Remove(hash)
	require.Equal(t, StageUnknown, c.Stage(hash))
	require.Equal(t, 0, c.Len(StageScheduled))
}
