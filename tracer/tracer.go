package tracer

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/achilleasa/whitted/types"
)

type ReflectionMode uint8

const (
	// Sum direct lighting over all lights and add a single reflection term
	// scaled by the total direct color.
	ReflectOnce ReflectionMode = iota

	// Add a reflection term after each light, scaled by the color
	// accumulated so far.
	ReflectPerLight
)

func (m ReflectionMode) String() string {
	switch m {
	case ReflectOnce:
		return "once"
	case ReflectPerLight:
		return "per-light"
	}
	return "unknown"
}

// Parse a reflection mode name.
func ParseReflectionMode(name string) (ReflectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "once":
		return ReflectOnce, nil
	case "per-light", "perlight":
		return ReflectPerLight, nil
	}
	return ReflectOnce, fmt.Errorf("tracer: unknown reflection mode %q; supported modes: once, per-light", name)
}

// Implement encoding.TextMarshaler so that modes can be stored in config files.
func (m ReflectionMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Implement encoding.TextUnmarshaler.
func (m *ReflectionMode) UnmarshalText(text []byte) error {
	mode, err := ParseReflectionMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Tracer options.
type Options struct {
	// Number of shadow rays cast towards lights with a radius.
	ShadowSamples int

	// How reflection contributions are accumulated.
	Reflection ReflectionMode

	// Test every primitive instead of querying the KD-tree.
	BruteForce bool
}

// Tracer statistics.
type Stats struct {
	PrimaryRays    uint64
	ShadowRays     uint64
	ReflectionRays uint64
}

// Get the rays traced since an earlier snapshot of the same counters.
func (s Stats) Sub(earlier Stats) Stats {
	return Stats{
		PrimaryRays:    s.PrimaryRays - earlier.PrimaryRays,
		ShadowRays:     s.ShadowRays - earlier.ShadowRays,
		ReflectionRays: s.ReflectionRays - earlier.ReflectionRays,
	}
}

// Total number of traced rays.
func (s Stats) Total() uint64 {
	return s.PrimaryRays + s.ShadowRays + s.ReflectionRays
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the color seen along ray, recursing up to depth levels for
	// reflections.
	Trace(ray types.Ray, depth int) types.Vec3

	// Retrieve ray statistics.
	Stats() Stats
}

type rayCounters struct {
	primary    atomic.Uint64
	shadow     atomic.Uint64
	reflection atomic.Uint64
}

func (c *rayCounters) snapshot() Stats {
	return Stats{
		PrimaryRays:    c.primary.Load(),
		ShadowRays:     c.shadow.Load(),
		ReflectionRays: c.reflection.Load(),
	}
}
