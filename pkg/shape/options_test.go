package shape

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, 6.0, o.Length)
	assert.Equal(t, 15, o.Steps)
	assert.Equal(t, 24, o.LoopLength)
	assert.Equal(t, 30, o.PulpitLoopLength)
	assert.Equal(t, CuffLathe, o.CuffMode)
	assert.True(t, o.CentralShaft)

	for _, kind := range Kinds() {
		res := Validate(kind, o)
		assert.Empty(t, res.Errors, "defaults must build %s", kind)
		assert.Empty(t, res.Warnings, "defaults must sit inside the UI ranges for %s", kind)
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.Len(t, schema, len(Keys()))

	d := DefaultOptions()
	byKey := map[string]OptionSpec{}
	for _, s := range schema {
		byKey[s.Key] = s
		got, err := d.Get(s.Key)
		require.NoError(t, err)
		assert.Equal(t, got, s.Value, "schema default for %s", s.Key)
		if s.Type == TypeNumber && !s.Fixed {
			assert.Less(t, s.Min, s.Max, "range for %s", s.Key)
		}
	}

	assert.Equal(t, TypeBool, byKey["centralShaft"].Type)
	assert.Equal(t, 4.0, byKey["baseFalloff"].Min)
	assert.Equal(t, 16.0, byKey["baseFalloff"].Max)
	assert.True(t, byKey["wallThickness"].Fixed)
}

func TestOptionSpecUsedBy(t *testing.T) {
	specs := map[string]OptionSpec{}
	for _, s := range Schema() {
		specs[s.Key] = s
	}
	assert.True(t, specs["length"].UsedBy(KindPulpit), "shared options apply to every kind")
	assert.True(t, specs["tension"].UsedBy(KindRibbed))
	assert.False(t, specs["tension"].UsedBy(KindSimple))
	assert.False(t, specs["pulpitSkewFactor"].UsedBy(KindRibbed))
}

func TestOptionsSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		check func(t *testing.T, o Options)
	}{
		{"camel", "baseFalloff", 8.0, func(t *testing.T, o Options) { assert.Equal(t, 8.0, o.BaseFalloff) }},
		{"kebab", "base-flare-percentage", 1.5, func(t *testing.T, o Options) { assert.Equal(t, 1.5, o.BaseFlarePercentage) }},
		{"snake", "pulpit_skew_factor", 0.9, func(t *testing.T, o Options) { assert.Equal(t, 0.9, o.PulpitSkewFactor) }},
		{"int value", "thickness", 1, func(t *testing.T, o Options) { assert.Equal(t, 1.0, o.Thickness) }},
		{"string number", "length", "7.5", func(t *testing.T, o Options) { assert.Equal(t, 7.5, o.Length) }},
		{"fixed int", "loop-length", 12.0, func(t *testing.T, o Options) { assert.Equal(t, 12, o.LoopLength) }},
		{"bool", "centralShaft", false, func(t *testing.T, o Options) { assert.False(t, o.CentralShaft) }},
		{"bool string", "cuff", "true", func(t *testing.T, o Options) { assert.True(t, o.Cuff) }},
		{"string", "cuffMode", "sdf", func(t *testing.T, o Options) { assert.Equal(t, CuffSDF, o.CuffMode) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			require.NoError(t, o.Set(tt.key, tt.value))
			tt.check(t, o)
		})
	}
}

func TestOptionsSetErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown key", "wingspan", 1.0},
		{"fractional int", "steps", 2.5},
		{"bool for number", "length", true},
		{"number for bool", "cuff", 1.0},
		{"bad string", "length", "long"},
		{"number for string", "cuffMode", 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			err := o.Set(tt.key, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	for _, k := range []string{"tipPercentage", "tip-percentage", "tip_percentage", "TIPPERCENTAGE"} {
		assert.Equal(t, "tippercentage", NormalizeKey(k))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		kind       Kind
		modify     func(*Options)
		wantErrKey string
		wantWarn   string
	}{
		{"negative length", KindSimple, func(o *Options) { o.Length = -1 }, "length", ""},
		{"negative thickness", KindRibbed, func(o *Options) { o.Thickness = -0.1 }, "thickness", ""},
		{"tip over one", KindLamellate, func(o *Options) { o.TipPercentage = 1.5 }, "tipPercentage", ""},
		{"small loop", KindSimple, func(o *Options) { o.LoopLength = 2 }, "loopLength", ""},
		{"zero steps", KindSimple, func(o *Options) { o.Steps = 0 }, "steps", ""},
		{"negative wall", KindPulpit, func(o *Options) { o.WallThickness = -0.1 }, "wallThickness", ""},
		{"small pulpit loop", KindPulpit, func(o *Options) { o.PulpitLoopLength = 1 }, "pulpitLoopLength", ""},
		{"huge pulpit loop", KindPulpit, func(o *Options) { o.PulpitLoopLength = 1 << 61 }, "pulpitLoopLength", ""},
		{"huge tip loop", KindLamellate, func(o *Options) { o.TipLoopLength = 1 << 62 }, "tipLoopLength", ""},
		{"huge loop", KindSimple, func(o *Options) { o.LoopLength = math.MaxInt }, "loopLength", ""},
		{"huge steps", KindRibbed, func(o *Options) { o.Steps = math.MaxInt }, "steps", ""},
		{"huge pulpit steps", KindPulpit, func(o *Options) { o.PulpitSteps = 1 << 40 }, "pulpitSteps", ""},
		{"huge rib intervals", KindRibbed, func(o *Options) { o.RibIntervals = 1 << 40 }, "ribIntervals", ""},
		{"huge cuff", KindLamellate, func(o *Options) { o.Cuff = true; o.CuffSegments = 1 << 40 }, "cuffSegments", ""},
		{"fine sdf cuff", KindLamellate, func(o *Options) { o.Cuff = true; o.CuffMode = CuffSDF; o.CuffCells = 10000 }, "cuffCells", ""},
		{"bad cuff mode", KindLamellate, func(o *Options) { o.CuffMode = "clay" }, "cuffMode", ""},
		{"nan", KindSimple, func(o *Options) { o.BaseFalloff = math.NaN() }, "baseFalloff", ""},
		{"shaft options checked by pulpit", KindPulpit, func(o *Options) { o.Steps = 0 }, "steps", ""},
		{"steep falloff", KindSimple, func(o *Options) { o.BaseFalloff = 30 }, "", "baseFalloff"},
		{"tight spiral", KindRibbed, func(o *Options) { o.Tension = 1.5 }, "", "tension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			res := Validate(tt.kind, o)
			if tt.wantErrKey != "" {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.wantErrKey, res.Errors[0].Key)
				assert.Equal(t, SeverityError, res.Errors[0].Severity)
				assert.ErrorIs(t, res.Err(), ErrInvalidOptions)
			} else {
				assert.True(t, res.OK())
				assert.NoError(t, res.Err())
			}
			if tt.wantWarn != "" {
				require.Len(t, res.Warnings, 1)
				assert.Equal(t, tt.wantWarn, res.Warnings[0].Key)
			}
		})
	}
}

func TestValidateIgnoresUnusedOptions(t *testing.T) {
	o := DefaultOptions()
	o.CentralShaft = false
	o.Steps = 0
	o.Tension = 50
	assert.True(t, Validate(KindPulpit, o).OK())
	assert.Empty(t, Validate(KindPulpit, o).Warnings)
}

func TestValidateUnknownKind(t *testing.T) {
	res := Validate("octopus", DefaultOptions())
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.Contains(res.Errors[0].Error(), "octopus"))
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Key: "length", Message: "bad", Severity: SeverityError}
	assert.Equal(t, "[error] length: bad", e.Error())
	assert.Equal(t, "warning", SeverityWarning.String())
}
