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

func TestPeerStateKnownHashSuppressesReannouncement(t *testing.T) {
	p := NewPeerState(1)
	hash := chainhash.Hash{1}
	require.False(t, p.IsKnown(hash))
	p.MarkKnown(hash)
	require.True(t, p.IsKnown(hash))
}

func TestPeerStateExpireTimeoutsIncrementsFailureStreak(t *testing.T) {
	p := NewPeerState(1)
	now := time.Now()
	hash := chainhash.Hash{2}
	p.Assign(hash, now.Add(-time.Second)) // already expired

	expired := p.ExpireTimeouts(now)
	require.Equal(t, []chainhash.Hash{hash}, expired)
	require.Equal(t, 1, p.consecutiveFailed)
}

func TestPeerStateDisconnectsAfterConsecutiveFailures(t *testing.T) {
	p := NewPeerState(1)
	now := time.Now()
	for i := 0; i < maxConsecutiveFailedWindows; i++ {
		hash := chainhash.Hash{byte(i)}
		p.Assign(hash, now.Add(-time.Second))
		p.ExpireTimeouts(now)
	}
	require.True(t, p.ShouldDisconnect())
}

func TestPeerStateResolveResetsFailureStreak(t *testing.T) {
	p := NewPeerState(1)
	now := time.Now()
	hash := chainhash.Hash{1}
	p.Assign(hash, now.Add(-time.Second))
	p.ExpireTimeouts(now)
	require.Equal(t, 1, p.consecutiveFailed)

	p.Assign(hash, now.Add(time.Minute))
	p.Resolve(hash)
	require.Equal(t, 0, p.consecutiveFailed)
}

func TestPeerStateFeeFilter(t *testing.T) {
	p := NewPeerState(1)
	require.True(t, p.AcceptsFeeRate(0))
	p.SetFeeFilter(10)
	require.False(t, p.AcceptsFeeRate(5))
	require.True(t, p.AcceptsFeeRate(10))
}
