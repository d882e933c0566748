// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

// Decision is the outcome of feeding a candidate's delta through a
// SizePolicy: whether to admit it, and whether the assembler should stop
// looking at anything after it. The two bits compose independently —
// "finish" (stop after this point) and "ignore" (don't admit this
// candidate) — which is what makes Join below a plain bitwise OR.
type Decision uint8

const (
	Append          Decision = 0
	FinishAndAppend Decision = 1 << 0
	Ignore          Decision = 1 << 1
	FinishAndIgnore          = FinishAndAppend | Ignore
)

func (d Decision) String() string {
	switch d {
	case Append:
		return "Append"
	case FinishAndAppend:
		return "FinishAndAppend"
	case Ignore:
		return "Ignore"
	case FinishAndIgnore:
		return "FinishAndIgnore"
	default:
		return "Unknown"
	}
}

// Join combines the independent decisions of two SizePolicy instances
// (bytes, sigops) into the single decision the assembler acts on. Finishes
// if either side wants to finish; ignores if either side wants to ignore.
func Join(a, b Decision) Decision { return a | b }

// SizePolicy tracks one resource counter (serialized bytes, or sigops)
// against a block's budget: Max is the hard ceiling, Buffer is how far
// below Max "finishing mode" begins, and FinishLimit is how many more
// candidates the assembler will look at, once finishing, before it hard
// stops regardless of whether they'd fit.
type SizePolicy struct {
	Current     int64
	Max         int64
	Buffer      int64
	FinishLimit int

	finishing  bool
	lookaheads int
}

// Decide reports what should happen to a candidate of the given size
// without committing it; call Accept afterward if the caller chooses to
// append it.
func (p *SizePolicy) Decide(delta int64) Decision {
	fits := p.Current+delta <= p.Max
	if !p.finishing && p.Current+delta > p.Max-p.Buffer {
		p.finishing = true
	}

	if !p.finishing {
		if fits {
			return Append
		}
		return Ignore
	}

	p.lookaheads++
	hardStop := p.lookaheads >= p.FinishLimit
	switch {
	case fits && hardStop:
		return FinishAndAppend
	case fits:
		return Append
	case hardStop:
		return FinishAndIgnore
	default:
		return Ignore
	}
}

// Accept commits delta to Current; call only after deciding to append.
func (p *SizePolicy) Accept(delta int64) {
	p.Current += delta
}
