package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/rhinophore/pkg/kernel"
	"github.com/chazu/rhinophore/pkg/noise"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrUnknownKind is returned when a shape kind has no generator.
var ErrUnknownKind = errors.New("unknown shape kind")

// Kind names a shape family.
type Kind string

const (
	KindSimple    Kind = "simple"
	KindRibbed    Kind = "ribbed"
	KindLamellate Kind = "lamellate"
	KindPulpit    Kind = "pulpit"
)

// Valid reports whether k names a known shape family.
func (k Kind) Valid() bool {
	switch k {
	case KindSimple, KindRibbed, KindLamellate, KindPulpit:
		return true
	}
	return false
}

// ParseKind parses a kind name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Generator builds a shape from options and a noise source.
type Generator func(o Options, src noise.Source) (*kernel.Part, error)

var generators = map[Kind]Generator{
	KindSimple:    Simple,
	KindRibbed:    Ribbed,
	KindLamellate: Lamellate,
	KindPulpit:    Pulpit,
}

// Kinds returns the registered kinds in alphabetical order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(generators))
	for k := range generators {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Generate dispatches to the generator for kind.
func Generate(kind Kind, o Options, src noise.Source) (*kernel.Part, error) {
	gen, ok := generators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return gen(o, src)
}

// Request is one shape to build: a kind, its options, the noise seed and
// where the result sits in the scene.
type Request struct {
	Name    string
	Kind    Kind
	Seed    int64
	Offset  v3.Vec
	Options Options
}

// NewRequest returns a request for kind with default options and seed.
func NewRequest(kind Kind) Request {
	return Request{Kind: kind, Seed: noise.DefaultSeed, Options: DefaultOptions()}
}

// Build generates the request with a fresh noise source for its seed and
// places the root part at Offset. A non-empty Name renames the root part.
func (r Request) Build() (*kernel.Part, error) {
	part, err := Generate(r.Kind, r.Options, noise.New(r.Seed))
	if err != nil {
		return nil, err
	}
	part.Offset = r.Offset
	if r.Name != "" {
		part.Name = r.Name
	}
	return part, nil
}
