package model

import (
	"bytes"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decimal is a float64 that always serializes in plain positional notation
// (never 1e-07) so persisted reports stay diffable. Non-finite values are
// written as null.
type Decimal float64

// String formats the value with the shortest exact positional representation.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

func (d Decimal) finite() bool {
	f := float64(d)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.finite() {
		return []byte("null"), nil
	}
	return []byte(d.String()), nil
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*d = Decimal(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

func (d Decimal) MarshalYAML() (interface{}, error) {
	if !d.finite() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	// Untagged so integral values print as "30" rather than "!!float 30".
	return &yaml.Node{Kind: yaml.ScalarNode, Value: d.String()}, nil
}

func (d *Decimal) UnmarshalYAML(n *yaml.Node) error {
	if n.Tag == "!!null" || n.Value == "null" || n.Value == "~" {
		*d = Decimal(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

// Decimals converts a float64 slice.
func Decimals(xs []float64) []Decimal {
	out := make([]Decimal, len(xs))
	for i, x := range xs {
		out[i] = Decimal(x)
	}
	return out
}

// DecimalPtr returns a pointer to Decimal(f).
func DecimalPtr(f float64) *Decimal {
	d := Decimal(f)
	return &d
}
