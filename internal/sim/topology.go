package sim

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/talgya/minisim/internal/rng"
)

// Topology selects how interaction pairs are formed each tick.
type Topology struct {
	kind topologyKind
	k    int
}

type topologyKind uint8

const (
	topologyAllPairs topologyKind = iota
	topologyRandomMatch
)

// AllPairs pairs every distinct couple of agents every tick.
func AllPairs() Topology { return Topology{kind: topologyAllPairs} }

// RandomMatch draws k candidate partners per agent per tick, deduplicated
// to unordered pairs.
func RandomMatch(k int) Topology { return Topology{kind: topologyRandomMatch, k: k} }

// ParseTopology accepts "all-pairs" or a per-agent match count, written
// either as a bare integer or as "k=<int>".
func ParseTopology(s string) (Topology, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "all-pairs", "all_pairs", "allpairs":
		return AllPairs(), nil
	}
	v = strings.TrimPrefix(v, "k=")
	k, err := strconv.Atoi(v)
	if err != nil {
		return Topology{}, fmt.Errorf("%w: unknown topology %q", ErrInvalidTopology, s)
	}
	return RandomMatch(k), nil
}

func (t Topology) String() string {
	if t.kind == topologyAllPairs {
		return "all-pairs"
	}
	return fmt.Sprintf("k=%d", t.k)
}

// validate checks the topology against the population size before any
// work begins. Random matching needs 1 <= k <= n-1.
func (t Topology) validate(n int) error {
	if t.kind == topologyRandomMatch && (t.k < 1 || t.k >= n) {
		return fmt.Errorf("%w: k=%d requires 1 <= k <= n-1 with n=%d", ErrInvalidTopology, t.k, n)
	}
	return nil
}

// Pair is an unordered agent couple, normalized so I < J.
type Pair struct {
	I, J int
}

// matchTag salts the per-tick matching seed so its draws are decoupled
// from the main stream.
const matchTag = "minisim.match"

// tickSeed fingerprints (seed, tick, tag) into the seed of the tick's
// private matching stream.
func tickSeed(seed int64, tick int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(tick))
	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(matchTag)
	return int64(d.Sum64())
}

// pairs produces the tick's pair list. All-pairs emits (i, j) for all
// i < j in lexicographic order. Random matching draws k partners per
// agent in index order from a fresh per-tick stream, excludes
// self-pairing with uniform probability over the remaining agents, and
// deduplicates preserving first occurrence.
func (t Topology) pairs(n int, seed int64, tick int) []Pair {
	if t.kind == topologyAllPairs {
		out := make([]Pair, 0, n*(n-1)/2)
		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				out = append(out, Pair{I: i, J: j})
			}
		}
		return out
	}

	s := rng.New(tickSeed(seed, tick))
	seen := make(map[Pair]struct{}, n*t.k)
	out := make([]Pair, 0, n*t.k)
	for i := 0; i < n; i++ {
		for d := 0; d < t.k; d++ {
			var u float64
			u, s = s.Uniform()
			j := int(u * float64(n-1))
			if j > n-2 {
				// u can round up to 1.0 at the extreme of the state space.
				j = n - 2
			}
			if j >= i {
				j++
			}
			p := Pair{I: i, J: j}
			if p.I > p.J {
				p.I, p.J = p.J, p.I
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
