// Package shape holds the rhinophore generators and the typed options that
// drive them. A generator is a pure function of its Options and the noise
// source it is handed; it returns a kernel.Part tree.
package shape

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/rhinophore/pkg/profile"
)

// Cuff construction modes.
const (
	CuffLathe = "lathe"
	CuffSDF   = "sdf"
)

// Options is the full set of shape parameters. The first group is exposed
// to the UI with a {min, max, value} range; the second group holds values
// that are fixed per shape family and are only overridden from scene files.
type Options struct {
	Length              float64 `json:"length" toml:"length" yaml:"length"`
	Thickness           float64 `json:"thickness" toml:"thickness" yaml:"thickness"`
	TipPercentage       float64 `json:"tipPercentage" toml:"tipPercentage" yaml:"tipPercentage"`
	BaseFlarePercentage float64 `json:"baseFlarePercentage" toml:"baseFlarePercentage" yaml:"baseFlarePercentage"`
	BaseFalloff         float64 `json:"baseFalloff" toml:"baseFalloff" yaml:"baseFalloff"`
	ShaftNoiseFactor    float64 `json:"shaftNoiseFactor" toml:"shaftNoiseFactor" yaml:"shaftNoiseFactor"`
	Bumpiness           float64 `json:"bumpiness" toml:"bumpiness" yaml:"bumpiness"`
	Tension             float64 `json:"tension" toml:"tension" yaml:"tension"`

	PulpitLengthPercentage float64 `json:"pulpitLengthPercentage" toml:"pulpitLengthPercentage" yaml:"pulpitLengthPercentage"`
	PulpitThickness        float64 `json:"pulpitThickness" toml:"pulpitThickness" yaml:"pulpitThickness"`
	BaseRadiusPercentage   float64 `json:"baseRadiusPercentage" toml:"baseRadiusPercentage" yaml:"baseRadiusPercentage"`
	HorizontalNoiseZoom    float64 `json:"horizontalNoiseZoom" toml:"horizontalNoiseZoom" yaml:"horizontalNoiseZoom"`
	VerticalNoiseZoom      float64 `json:"verticalNoiseZoom" toml:"verticalNoiseZoom" yaml:"verticalNoiseZoom"`
	RadiusNoiseFactor      float64 `json:"radiusNoiseFactor" toml:"radiusNoiseFactor" yaml:"radiusNoiseFactor"`
	PulpitSkewFactor       float64 `json:"pulpitSkewFactor" toml:"pulpitSkewFactor" yaml:"pulpitSkewFactor"`
	CentralShaft           bool    `json:"centralShaft" toml:"centralShaft" yaml:"centralShaft"`
	Cuff                   bool    `json:"cuff" toml:"cuff" yaml:"cuff"`

	Steps            int     `json:"steps" toml:"steps" yaml:"steps"`
	LoopLength       int     `json:"loopLength" toml:"loopLength" yaml:"loopLength"`
	RibIntervals     int     `json:"ribIntervals" toml:"ribIntervals" yaml:"ribIntervals"`
	RibNoiseZoom     float64 `json:"ribNoiseZoom" toml:"ribNoiseZoom" yaml:"ribNoiseZoom"`
	PulpitSteps      int     `json:"pulpitSteps" toml:"pulpitSteps" yaml:"pulpitSteps"`
	PulpitLoopLength int     `json:"pulpitLoopLength" toml:"pulpitLoopLength" yaml:"pulpitLoopLength"`
	WallThickness    float64 `json:"wallThickness" toml:"wallThickness" yaml:"wallThickness"`
	TipLoopLength    int     `json:"tipLoopLength" toml:"tipLoopLength" yaml:"tipLoopLength"`
	CuffSegments     int     `json:"cuffSegments" toml:"cuffSegments" yaml:"cuffSegments"`
	CuffMode         string  `json:"cuffMode" toml:"cuffMode" yaml:"cuffMode"`
	CuffCells        int     `json:"cuffCells" toml:"cuffCells" yaml:"cuffCells"`
}

// DefaultOptions returns the options every shape starts from.
func DefaultOptions() Options {
	o := Options{}
	for _, f := range fields {
		f.reset(&o)
	}
	return o
}

// ValueType is the type of an option value.
type ValueType string

const (
	TypeNumber ValueType = "number"
	TypeInt    ValueType = "int"
	TypeBool   ValueType = "bool"
	TypeString ValueType = "string"
)

// OptionSpec describes one option for an external UI. Min and Max are
// advisory: values outside them are accepted with a warning.
type OptionSpec struct {
	Key   string    `json:"key"`
	Type  ValueType `json:"type"`
	Min   float64   `json:"min,omitempty"`
	Max   float64   `json:"max,omitempty"`
	Value any       `json:"value"`
	Fixed bool      `json:"fixed,omitempty"`
	Kinds []Kind    `json:"kinds"`
	Doc   string    `json:"doc,omitempty"`
}

// UsedBy reports whether shapes of kind k read the option.
func (s OptionSpec) UsedBy(k Kind) bool {
	return usesKind(s.Kinds, k)
}

// Schema lists every option with its default value, in declaration order.
func Schema() []OptionSpec {
	d := DefaultOptions()
	out := make([]OptionSpec, 0, len(fields))
	for _, f := range fields {
		out = append(out, OptionSpec{
			Key:   f.key,
			Type:  f.typ,
			Min:   f.min,
			Max:   f.max,
			Value: f.get(&d),
			Fixed: f.fixed,
			Kinds: f.kinds,
			Doc:   f.doc,
		})
	}
	return out
}

// Keys returns the canonical option keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key. Keys may be written in camelCase,
// kebab-case or snake_case.
func (o *Options) Get(key string) (any, error) {
	f, ok := lookupField(key)
	if !ok {
		return nil, fmt.Errorf("%w: unknown option %q", ErrInvalidOptions, key)
	}
	return f.get(o), nil
}

// Set assigns value to key. Numbers may be given as any Go numeric type or
// as a string; booleans as bool or a string accepted by strconv.ParseBool.
func (o *Options) Set(key string, value any) error {
	f, ok := lookupField(key)
	if !ok {
		return fmt.Errorf("%w: unknown option %q", ErrInvalidOptions, key)
	}
	if err := f.set(o, value); err != nil {
		return fmt.Errorf("%w: option %s: %v", ErrInvalidOptions, f.key, err)
	}
	return nil
}

// SetAll applies every entry of values, stopping at the first error.
// Keys are applied in sorted order so errors are reported deterministically.
func (o *Options) SetAll(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := o.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeKey folds camelCase, kebab-case and snake_case spellings of a key
// to one form.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")
	return strings.ToLower(key)
}

// ---------------------------------------------------------------------------
// Field table
// ---------------------------------------------------------------------------

type field struct {
	key      string
	typ      ValueType
	min, max float64
	fixed    bool
	kinds    []Kind // nil means every kind
	doc      string

	num  func(*Options) *float64
	num0 float64
	in   func(*Options) *int
	in0  int
	flag func(*Options) *bool
	fl0  bool
	str  func(*Options) *string
	st0  string
}

func (f field) reset(o *Options) {
	switch f.typ {
	case TypeNumber:
		*f.num(o) = f.num0
	case TypeInt:
		*f.in(o) = f.in0
	case TypeBool:
		*f.flag(o) = f.fl0
	case TypeString:
		*f.str(o) = f.st0
	}
}

func (f field) get(o *Options) any {
	switch f.typ {
	case TypeNumber:
		return *f.num(o)
	case TypeInt:
		return *f.in(o)
	case TypeBool:
		return *f.flag(o)
	default:
		return *f.str(o)
	}
}

func (f field) set(o *Options, value any) error {
	switch f.typ {
	case TypeNumber:
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		*f.num(o) = v
	case TypeInt:
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		if v != float64(int(v)) {
			return fmt.Errorf("%v is not an integer", value)
		}
		*f.in(o) = int(v)
	case TypeBool:
		v, err := toBool(value)
		if err != nil {
			return err
		}
		*f.flag(o) = v
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		*f.str(o) = s
	}
	return nil
}

func (f field) usedBy(k Kind) bool {
	return usesKind(f.kinds, k)
}

// usesKind reports whether kinds includes k; an empty list means every kind.
func usesKind(kinds []Kind, k Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, fk := range kinds {
		if fk == k {
			return true
		}
	}
	return false
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("expected bool, got %T", value)
	}
}

var fieldIndex map[string]int

func init() {
	fieldIndex = make(map[string]int, len(fields))
	for i, f := range fields {
		fieldIndex[NormalizeKey(f.key)] = i
	}
}

func lookupField(key string) (field, bool) {
	i, ok := fieldIndex[NormalizeKey(key)]
	if !ok {
		return field{}, false
	}
	return fields[i], true
}

var (
	tubeKinds   = []Kind{KindSimple, KindRibbed, KindLamellate}
	flareKinds  = []Kind{KindSimple, KindLamellate}
	pulpitKinds = []Kind{KindPulpit}
)

func number(key string, def, min, max float64, kinds []Kind, doc string, p func(*Options) *float64) field {
	return field{key: key, typ: TypeNumber, num0: def, min: min, max: max, kinds: kinds, doc: doc, num: p}
}

func fixedNumber(key string, def float64, kinds []Kind, doc string, p func(*Options) *float64) field {
	return field{key: key, typ: TypeNumber, num0: def, fixed: true, kinds: kinds, doc: doc, num: p}
}

func fixedInt(key string, def int, kinds []Kind, doc string, p func(*Options) *int) field {
	return field{key: key, typ: TypeInt, in0: def, fixed: true, kinds: kinds, doc: doc, in: p}
}

func boolean(key string, def bool, kinds []Kind, doc string, p func(*Options) *bool) field {
	return field{key: key, typ: TypeBool, fl0: def, kinds: kinds, doc: doc, flag: p}
}

var fields = []field{
	number("length", 6, 1, 20, nil, "overall length of the horn",
		func(o *Options) *float64 { return &o.Length }),
	number("thickness", 0.2, 0.05, 1, tubeKinds, "shaft radius",
		func(o *Options) *float64 { return &o.Thickness }),
	number("tipPercentage", 0.1, 0, 0.5, flareKinds, "share of the length used by the tip",
		func(o *Options) *float64 { return &o.TipPercentage }),
	number("baseFlarePercentage", 0.8, 0, 3, flareKinds, "extra radius at the base as a share of thickness",
		func(o *Options) *float64 { return &o.BaseFlarePercentage }),
	number("baseFalloff", 5, 4, 16, flareKinds, "steepness of the flare decay",
		func(o *Options) *float64 { return &o.BaseFalloff }),
	number("shaftNoiseFactor", 1, 0, 5, []Kind{KindSimple}, "lateral wobble of the shaft",
		func(o *Options) *float64 { return &o.ShaftNoiseFactor }),
	number("bumpiness", 0.05, 0, 0.5, []Kind{KindRibbed}, "radius noise amplitude of the ribs",
		func(o *Options) *float64 { return &o.Bumpiness }),
	number("tension", 0.05, 0, 1, []Kind{KindRibbed}, "compounding curl of the ribbed centerline",
		func(o *Options) *float64 { return &o.Tension }),

	number("pulpitLengthPercentage", 0.3, 0.1, 1, pulpitKinds, "pulpit height as a share of length",
		func(o *Options) *float64 { return &o.PulpitLengthPercentage }),
	number("pulpitThickness", 0.6, 0.1, 3, pulpitKinds, "radius at the pulpit rim",
		func(o *Options) *float64 { return &o.PulpitThickness }),
	number("baseRadiusPercentage", 0.6, 0.1, 2, pulpitKinds, "base radius as a share of the rim radius",
		func(o *Options) *float64 { return &o.BaseRadiusPercentage }),
	number("horizontalNoiseZoom", 0.5, 0, 5, pulpitKinds, "radius noise zoom around the ring",
		func(o *Options) *float64 { return &o.HorizontalNoiseZoom }),
	number("verticalNoiseZoom", 0.5, 0, 5, pulpitKinds, "radius noise zoom up the pulpit",
		func(o *Options) *float64 { return &o.VerticalNoiseZoom }),
	number("radiusNoiseFactor", 0.1, 0, 1, pulpitKinds, "radius noise amplitude",
		func(o *Options) *float64 { return &o.RadiusNoiseFactor }),
	number("pulpitSkewFactor", 0.3, 0, 2, pulpitKinds, "noise zoom of the ring height skew",
		func(o *Options) *float64 { return &o.PulpitSkewFactor }),
	boolean("centralShaft", true, pulpitKinds, "grow a simple horn out of the pulpit",
		func(o *Options) *bool { return &o.CentralShaft }),
	boolean("cuff", false, []Kind{KindLamellate}, "add a rounded cuff at the base",
		func(o *Options) *bool { return &o.Cuff }),

	fixedInt("steps", 15, tubeKinds, "shaft rings; the simple tip adds as many again",
		func(o *Options) *int { return &o.Steps }),
	fixedInt("loopLength", 24, tubeKinds, "points per tube ring",
		func(o *Options) *int { return &o.LoopLength }),
	fixedInt("ribIntervals", profile.DefaultIntervals, []Kind{KindRibbed}, "straight runs in the ribbed centerline",
		func(o *Options) *int { return &o.RibIntervals }),
	fixedNumber("ribNoiseZoom", 0.07, []Kind{KindRibbed}, "rib noise change along the length",
		func(o *Options) *float64 { return &o.RibNoiseZoom }),
	fixedInt("pulpitSteps", 10, pulpitKinds, "pulpit ring count minus one",
		func(o *Options) *int { return &o.PulpitSteps }),
	fixedInt("pulpitLoopLength", 30, pulpitKinds, "points per pulpit ring",
		func(o *Options) *int { return &o.PulpitLoopLength }),
	fixedNumber("wallThickness", 0.1, pulpitKinds, "pulpit wall thickness",
		func(o *Options) *float64 { return &o.WallThickness }),
	fixedInt("tipLoopLength", 20, []Kind{KindLamellate}, "points per lamellate tip ring",
		func(o *Options) *int { return &o.TipLoopLength }),
	fixedInt("cuffSegments", 24, []Kind{KindLamellate}, "lathe segments of the cuff",
		func(o *Options) *int { return &o.CuffSegments }),
	{key: "cuffMode", typ: TypeString, st0: CuffLathe, fixed: true, kinds: []Kind{KindLamellate},
		doc: "cuff construction: lathe or sdf", str: func(o *Options) *string { return &o.CuffMode }},
	fixedInt("cuffCells", 48, []Kind{KindLamellate}, "marching cubes resolution of an sdf cuff",
		func(o *Options) *int { return &o.CuffCells }),
}
