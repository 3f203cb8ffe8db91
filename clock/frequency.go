package clock

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"omibyte.io/mcxclk/peripheral"
)

// Frequency is a clock rate in Hz. It accepts values such as "24MHz",
// "32.768kHz" or "48000000" from YAML and from command line flags.
type Frequency uint32

var _ pflag.Value = (*Frequency)(nil)

var units = []struct {
	suffix string
	scale  int64
}{
	{"ghz", 1_000_000_000},
	{"mhz", 1_000_000},
	{"khz", 1_000},
	{"hz", 1},
}

// ParseFrequency converts a frequency with an optional unit into Hz. The
// value must resolve to a whole number of Hz.
func ParseFrequency(s string) (uint32, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	scale := int64(1)
	for _, u := range units {
		if strings.HasSuffix(text, u.suffix) {
			text = strings.TrimSpace(strings.TrimSuffix(text, u.suffix))
			scale = u.scale
			break
		}
	}
	text = strings.ReplaceAll(text, "_", "")
	value, ok := new(big.Rat).SetString(text)
	if !ok || len(text) == 0 || value.Sign() < 0 {
		return 0, fmt.Errorf("%w: invalid frequency %q", peripheral.ErrInvalidConfig, s)
	}
	value.Mul(value, new(big.Rat).SetInt64(scale))
	if !value.IsInt() {
		return 0, fmt.Errorf("%w: frequency %q is not a whole number of Hz", peripheral.ErrInvalidConfig, s)
	}
	hz := value.Num()
	if !hz.IsUint64() || hz.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: frequency %q", peripheral.ErrOutOfRange, s)
	}
	return uint32(hz.Uint64()), nil
}

// String formats f with the largest unit that represents it exactly.
func (f Frequency) String() string {
	for _, u := range units {
		if int64(f) >= u.scale && int64(f)%u.scale == 0 {
			return fmt.Sprintf("%d%s", int64(f)/u.scale, unitNames[u.suffix])
		}
	}
	return fmt.Sprintf("%dHz", uint32(f))
}

var unitNames = map[string]string{"ghz": "GHz", "mhz": "MHz", "khz": "kHz", "hz": "Hz"}

// Set implements pflag.Value.
func (f *Frequency) Set(s string) error {
	hz, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = Frequency(hz)
	return nil
}

func (f *Frequency) Type() string {
	return "frequency"
}

func (f *Frequency) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: frequency must be a scalar", peripheral.ErrInvalidConfig, value.Line)
	}
	return f.Set(value.Value)
}

func (f Frequency) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}
