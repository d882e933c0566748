// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizePolicyAppendsUnderBuffer(t *testing.T) {
	p := &SizePolicy{Max: 1000, Buffer: 200, FinishLimit: 3}
	require.Equal(t, Append, p.Decide(100))
	p.Accept(100)
	require.Equal(t, Append, p.Decide(100))
}

func TestSizePolicyHardStopsAfterFinishLimit(t *testing.T) {
	p := &SizePolicy{Max: 1000, Buffer: 200, FinishLimit: 3}
	p.Accept(850) // now inside the buffer zone (> max-buffer == 800)

	// Each further candidate that still fits consumes one lookahead.
	require.Equal(t, Append, p.Decide(10))
	p.Accept(10)
	require.Equal(t, Append, p.Decide(10))
	p.Accept(10)
	require.Equal(t, FinishAndAppend, p.Decide(10))
}

func TestSizePolicyIgnoresOversizedCandidate(t *testing.T) {
	p := &SizePolicy{Max: 1000, Buffer: 200, FinishLimit: 3}
	p.Accept(950)
	require.Equal(t, Ignore, p.Decide(100))
}

func TestJoinMatchesLatticeTable(t *testing.T) {
	cases := []struct {
		a, b, want Decision
	}{
		{Append, Append, Append},
		{Append, FinishAndAppend, FinishAndAppend},
		{Append, Ignore, Ignore},
		{Append, FinishAndIgnore, FinishAndIgnore},
		{FinishAndAppend, FinishAndAppend, FinishAndAppend},
		{FinishAndAppend, Ignore, FinishAndIgnore},
		{FinishAndAppend, FinishAndIgnore, FinishAndIgnore},
		{Ignore, Ignore, Ignore},
		{Ignore, FinishAndIgnore, FinishAndIgnore},
		{FinishAndIgnore, FinishAndIgnore, FinishAndIgnore},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Join(c.a, c.b))
		require.Equal(t, c.want, Join(c.b, c.a), "Join must be commutative")
	}
}
