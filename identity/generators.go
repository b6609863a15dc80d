package identity

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator produces string identities for new Data objects.
type Generator interface {
	Generate() (string, error)
	Name() string
}

// UUIDGenerator generates UUID v4 identities.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("identity: generating uuid: %w", err)
	}
	return id.String(), nil
}

func (UUIDGenerator) Name() string { return "uuid" }

// ULIDGenerator generates lexically sortable ULID identities. IDs created
// within the same millisecond increase monotonically.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("identity: generating ulid: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Name() string { return "ulid" }

// SnowflakeGenerator generates Snowflake-style numeric identities:
// 41 bits of milliseconds since 2023-01-01, 10 bits of machine, 12 bits of
// sequence.
type SnowflakeGenerator struct {
	mu        sync.Mutex
	machineID uint64
	sequence  uint64
	lastTime  uint64
	epoch     uint64
}

func NewSnowflakeGenerator(machineID uint64) *SnowflakeGenerator {
	return &SnowflakeGenerator{
		machineID: machineID & 0x3FF,
		epoch:     uint64(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()),
	}
}

func (g *SnowflakeGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := uint64(time.Now().UnixMilli())
	if now < g.lastTime {
		return "", ErrClockMovedBackwards
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & 0xFFF
		if g.sequence == 0 {
			// Sequence exhausted, wait for the next millisecond
			for now <= g.lastTime {
				now = uint64(time.Now().UnixMilli())
			}
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = now

	id := ((now - g.epoch) << 22) | (g.machineID << 12) | g.sequence
	return strconv.FormatUint(id, 10), nil
}

func (g *SnowflakeGenerator) Name() string { return "snowflake" }

// NanoIDGenerator generates random identities over an alphabet.
type NanoIDGenerator struct {
	size     int
	alphabet string
}

func NewNanoIDGenerator(size int, alphabet string) *NanoIDGenerator {
	if size <= 0 {
		size = 21
	}
	if alphabet == "" {
		alphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	}
	return &NanoIDGenerator{size: size, alphabet: alphabet}
}

func (g *NanoIDGenerator) Generate() (string, error) {
	bytes := make([]byte, g.size)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("identity: reading random bytes: %w", err)
	}

	id := make([]byte, g.size)
	for i := range id {
		id[i] = g.alphabet[int(bytes[i])%len(g.alphabet)]
	}
	return string(id), nil
}

func (g *NanoIDGenerator) Name() string { return "nanoid" }

// Registry holds generators by name.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry returns a registry holding the uuid, ulid, snowflake and
// nanoid generators.
func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}

	r.Register(UUIDGenerator{})
	r.Register(NewULIDGenerator())
	r.Register(NewSnowflakeGenerator(1))
	r.Register(NewNanoIDGenerator(21, ""))

	return r
}

// Register adds g under its name, replacing any generator of that name.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[g.Name()] = g
}

func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	return g, ok
}

// Names returns the registered generator names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Generate(name string) (string, error) {
	g, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownGenerator, name)
	}
	return g.Generate()
}
