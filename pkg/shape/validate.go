package shape

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/rhinophore/pkg/kernel"
)

// ErrInvalidOptions reports options that a generator cannot build from.
// It wraps kernel.ErrInvalidArgument.
var ErrInvalidOptions = fmt.Errorf("%w: shape options", kernel.ErrInvalidArgument)

// ValidationSeverity indicates whether a validation finding blocks
// generation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks generation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Key      string             // option key (empty if shape-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Key, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Key     string
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err returns nil when there are no blocking errors, and otherwise one
// error wrapping ErrInvalidOptions that lists them.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

// Validate checks the options a kind reads. Tier 1 finds contract
// violations the kernel refuses to build (errors); tier 2 flags values
// outside the advisory UI range (warnings). A pulpit with a central shaft
// also reads the simple shape's options.
func Validate(kind Kind, o Options) ValidationResult {
	var result ValidationResult
	if !kind.Valid() {
		result.Errors = append(result.Errors, ValidationError{
			Message:  fmt.Sprintf("unknown shape kind %q", kind),
			Severity: SeverityError,
		})
		return result
	}

	uses := func(f field) bool {
		return f.usedBy(kind) || (kind == KindPulpit && o.CentralShaft && f.usedBy(KindSimple))
	}

	// Tier 1: contract violations.
	result.Errors = append(result.Errors, validateFinite(o, uses)...)
	result.Errors = append(result.Errors, validateContracts(o, uses)...)

	// Tier 2: advisory ranges.
	result.Warnings = append(result.Warnings, validateRanges(o, uses)...)
	return result
}

// validateFinite rejects NaN and infinite numbers.
func validateFinite(o Options, uses func(field) bool) []ValidationError {
	var errs []ValidationError
	for _, f := range fields {
		if f.typ != TypeNumber || !uses(f) {
			continue
		}
		v := *f.num(&o)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, ValidationError{
				Key:      f.key,
				Message:  fmt.Sprintf("value %v is not a finite number", v),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// Upper limits on ring counts and marching cubes resolution.
const (
	maxSteps     = 4096
	maxCuffCells = 512
)

func between(lo, hi int) string {
	return fmt.Sprintf("must be within [%d, %d]", lo, hi)
}

func outside(v, lo, hi int) bool {
	return v < lo || v > hi
}

type constraint struct {
	key   string
	bad   func(Options) bool
	check string
}

var constraints = []constraint{
	{"length", func(o Options) bool { return o.Length < 0 }, "must not be negative"},
	{"thickness", func(o Options) bool { return o.Thickness < 0 }, "must not be negative"},
	{"tipPercentage", func(o Options) bool { return o.TipPercentage < 0 || o.TipPercentage > 1 }, "must be within [0, 1]"},
	{"pulpitLengthPercentage", func(o Options) bool { return o.PulpitLengthPercentage < 0 }, "must not be negative"},
	{"pulpitThickness", func(o Options) bool { return o.PulpitThickness < 0 }, "must not be negative"},
	{"baseRadiusPercentage", func(o Options) bool { return o.BaseRadiusPercentage < 0 }, "must not be negative"},
	{"wallThickness", func(o Options) bool { return o.WallThickness < 0 }, "must not be negative"},
	{"steps", func(o Options) bool { return outside(o.Steps, 1, maxSteps) }, between(1, maxSteps)},
	{"pulpitSteps", func(o Options) bool { return outside(o.PulpitSteps, 1, maxSteps) }, between(1, maxSteps)},
	{"ribIntervals", func(o Options) bool { return outside(o.RibIntervals, 2, maxSteps) }, between(2, maxSteps)},
	{"loopLength", func(o Options) bool { return outside(o.LoopLength, kernel.MinLoopLength, kernel.MaxLoopLength) }, between(kernel.MinLoopLength, kernel.MaxLoopLength)},
	{"pulpitLoopLength", func(o Options) bool { return outside(o.PulpitLoopLength, kernel.MinLoopLength, kernel.MaxLoopLength) }, between(kernel.MinLoopLength, kernel.MaxLoopLength)},
	{"tipLoopLength", func(o Options) bool { return outside(o.TipLoopLength, kernel.MinLoopLength, kernel.MaxLoopLength) }, between(kernel.MinLoopLength, kernel.MaxLoopLength)},
	{"cuffSegments", func(o Options) bool { return o.Cuff && outside(o.CuffSegments, kernel.MinLoopLength, kernel.MaxLoopLength) }, between(kernel.MinLoopLength, kernel.MaxLoopLength)},
	{"cuffCells", func(o Options) bool { return o.Cuff && o.CuffMode == CuffSDF && outside(o.CuffCells, 4, maxCuffCells) }, between(4, maxCuffCells)},
	{"cuffMode", func(o Options) bool { return o.CuffMode != CuffLathe && o.CuffMode != CuffSDF }, `must be "lathe" or "sdf"`},
}

// validateContracts checks the limits below which the kernel has no
// meaningful geometry to build.
func validateContracts(o Options, uses func(field) bool) []ValidationError {
	var errs []ValidationError
	for _, c := range constraints {
		f, ok := lookupField(c.key)
		if !ok || !uses(f) || !c.bad(o) {
			continue
		}
		errs = append(errs, ValidationError{
			Key:      f.key,
			Message:  fmt.Sprintf("value %v %s", f.get(&o), c.check),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateRanges warns about UI options outside their advisory range.
// Such values are built as given and produce extreme geometry.
func validateRanges(o Options, uses func(field) bool) []ValidationWarning {
	var warnings []ValidationWarning
	for _, f := range fields {
		if f.typ != TypeNumber || f.fixed || !uses(f) {
			continue
		}
		v := *f.num(&o)
		if v < f.min || v > f.max {
			warnings = append(warnings, ValidationWarning{
				Key:     f.key,
				Message: fmt.Sprintf("value %g outside the usual range [%g, %g]", v, f.min, f.max),
			})
		}
	}
	return warnings
}
