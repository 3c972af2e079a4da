package cli

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0", 0, false},
		{"12.5", 12.5, false},
		{" 3 ", 3, false},
		{"10%", 25.6, false},
		{"100%", 256, false},
		{"0%", 0, false},
		{"-1", 0, true},
		{"-5%", 0, true},
		{"abc", 0, true},
		{"%", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThreshold(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("got %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseThreshold failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Point
		wantErr bool
	}{
		{"0,0", image.Pt(0, 0), false},
		{"12,34", image.Pt(12, 34), false},
		{" 1, 2", image.Pt(1, 2), false},
		{"12", image.Point{}, true},
		{"a,b", image.Point{}, true},
		{"-1,2", image.Point{}, true},
		{"1,2,3", image.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHint(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("got %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHint failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{Mode: ModeFind, ThresholdArg: "0", MinSize: 1}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"chunks", func(c *Config) { c.Mode = ModeChunks }, false},
		{"unknown mode", func(c *Config) { c.Mode = "fuzzy" }, true},
		{"bad threshold", func(c *Config) { c.ThresholdArg = "x" }, true},
		{"zero min size", func(c *Config) { c.MinSize = 0 }, true},
		{"negative range", func(c *Config) { c.Range = -1 }, true},
		{"hint in find mode", func(c *Config) { c.HintArg = "3,4" }, false},
		{"hint in chunks mode", func(c *Config) { c.Mode = ModeChunks; c.HintArg = "3,4" }, true},
		{"malformed hint", func(c *Config) { c.HintArg = "3;4" }, true},
		{"diff image in chunks mode", func(c *Config) { c.Mode = ModeChunks; c.DiffImage = "d.png" }, false},
		{"diff image in find mode", func(c *Config) { c.DiffImage = "d.png" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("got %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestConfigValidate_FillsParsedFields(t *testing.T) {
	c := Config{Mode: ModeFind, ThresholdArg: "50%", MinSize: 1, HintArg: "7,9"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.Threshold != 128 {
		t.Errorf("Threshold: got %v, want 128", c.Threshold)
	}
	if c.Hint == nil || *c.Hint != image.Pt(7, 9) {
		t.Errorf("Hint: got %v, want (7,9)", c.Hint)
	}
}
