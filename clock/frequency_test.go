package clock

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"omibyte.io/mcxclk/peripheral"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		err  error
	}{
		{"48000000", 48_000_000, nil},
		{"24MHz", 24_000_000, nil},
		{"24 mhz", 24_000_000, nil},
		{"32.768kHz", 32_768, nil},
		{"1.5GHz", 1_500_000_000, nil},
		{"12_000_000Hz", 12_000_000, nil},
		{"0.5Hz", 0, peripheral.ErrInvalidConfig},
		{"MHz", 0, peripheral.ErrInvalidConfig},
		{"-1MHz", 0, peripheral.ErrInvalidConfig},
		{"fast", 0, peripheral.ErrInvalidConfig},
		{"5GHz", 0, peripheral.ErrOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFrequency(tc.in)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFrequencyString(t *testing.T) {
	for hz, want := range map[Frequency]string{
		0:           "0Hz",
		12_000_000:  "12MHz",
		32_768:      "32768Hz",
		150_000:     "150kHz",
		22_500_000:  "22500kHz",
		144_000_000: "144MHz",
	} {
		if got := hz.String(); got != want {
			t.Errorf("%d: got %q, want %q", uint32(hz), got, want)
		}
	}
}

func TestFrequencyYAML(t *testing.T) {
	var v struct {
		F Frequency `yaml:"f"`
	}
	if err := yaml.Unmarshal([]byte("f: 180MHz"), &v); err != nil {
		t.Fatal(err)
	}
	if v.F != 180_000_000 {
		t.Errorf("got %d", v.F)
	}
	if err := yaml.Unmarshal([]byte("f: [1, 2]"), &v); err == nil {
		t.Error("sequence accepted")
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "f: 180MHz\n" {
		t.Errorf("marshal = %q", out)
	}
}

func TestFrequencyFlag(t *testing.T) {
	var f Frequency
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.VarP(&f, "input", "i", "")
	if err := fs.Parse([]string{"--input", "32.768kHz"}); err != nil {
		t.Fatal(err)
	}
	if f != 32_768 {
		t.Errorf("got %d, want 32768", f)
	}
	if got := fs.Lookup("input").Value.Type(); got != "frequency" {
		t.Errorf("type = %q", got)
	}
	if err := fs.Parse([]string{"-i", "fast"}); err == nil {
		t.Error("accepted a frequency without digits")
	}
}
