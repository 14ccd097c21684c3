package domain

import (
	"fmt"
	"sort"
	"strings"
)

// GlobalPinHost is the pin-set key whose entries apply to every hostname.
const GlobalPinHost = "*"

// PinSet maps hostnames to the fingerprints accepted for them. A PinSet is
// immutable once built; runtime reconfiguration replaces the whole set
// atomically so concurrent evaluations always see a self-consistent snapshot.
//
// Pinning is additive-only: a non-empty set of applicable pins can fail a
// chain that standard validation would accept, never rescue one it rejects.
type PinSet struct {
	algorithm PinAlgorithm
	byHost    map[string][]Fingerprint
}

// NewPinSet builds a PinSet from serialized pins keyed by hostname (or
// GlobalPinHost). Hostname keys are normalized the same way evaluation
// hostnames are, so lookups cannot miss on case or a trailing dot.
func NewPinSet(alg PinAlgorithm, pins map[string][]string) (*PinSet, error) {
	if alg == "" {
		alg = PinAlgorithmSPKISHA256
	}
	if !alg.Valid() {
		return nil, fmt.Errorf("unsupported pin algorithm %q", alg)
	}

	byHost := make(map[string][]Fingerprint, len(pins))
	for host, values := range pins {
		key := host
		if key != GlobalPinHost {
			normalized, err := NewHostname(host)
			if err != nil {
				return nil, fmt.Errorf("invalid pinned hostname %q: %w", host, err)
			}
			key = normalized.String()
		}

		if len(values) == 0 {
			return nil, fmt.Errorf("pin entry for %q is empty; remove it or add fingerprints", host)
		}

		fps := make([]Fingerprint, 0, len(values))
		for _, value := range values {
			fp, err := ParseFingerprint(value)
			if err != nil {
				return nil, fmt.Errorf("invalid pin for %q: %w", host, err)
			}
			fps = append(fps, fp)
		}
		byHost[key] = fps
	}

	return &PinSet{algorithm: alg, byHost: byHost}, nil
}

// EmptyPinSet returns a set with no entries, under which pinning is skipped
// for every host.
func EmptyPinSet() *PinSet {
	return &PinSet{algorithm: PinAlgorithmSPKISHA256, byHost: map[string][]Fingerprint{}}
}

// Algorithm returns the algorithm fingerprints in this set were computed with.
func (p *PinSet) Algorithm() PinAlgorithm {
	return p.algorithm
}

// IsEmpty reports whether the set has no entries for any host.
func (p *PinSet) IsEmpty() bool {
	return len(p.byHost) == 0
}

// ForHost returns the pins applicable to a hostname: the union of its exact
// entries and the global entries. An empty result means pinning is not in
// effect for the host.
func (p *PinSet) ForHost(host Hostname) []Fingerprint {
	exact := p.byHost[host.String()]
	global := p.byHost[GlobalPinHost]
	if len(global) == 0 {
		return exact
	}

	applicable := make([]Fingerprint, 0, len(exact)+len(global))
	applicable = append(applicable, exact...)
	applicable = append(applicable, global...)
	return applicable
}

// Hosts returns the pinned hostnames in sorted order, for diagnostics.
func (p *PinSet) Hosts() []string {
	hosts := make([]string, 0, len(p.byHost))
	for host := range p.byHost {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// String summarizes the set for logs without dumping fingerprint material.
func (p *PinSet) String() string {
	if p.IsEmpty() {
		return "pinset(empty)"
	}
	return fmt.Sprintf("pinset(%s: %s)", p.algorithm, strings.Join(p.Hosts(), ", "))
}
