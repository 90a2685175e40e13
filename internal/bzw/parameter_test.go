/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import (
	"errors"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func TestParameterRealCountProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n <= 8; n++ {
		p := ParameterSchema{Type: Real, Count: n}
		want := make([]float64, n)
		parts := []string{"key"}
		for i := range want {
			want[i] = (rng.Float64() - 0.5) * 1e4
			parts = append(parts, strconv.FormatFloat(want[i], 'g', -1, 64))
		}
		inst, err := p.ParseLine(strings.Join(parts, "  "))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if got := inst.Reals(); !slices.Equal(got, want) {
			t.Fatalf("n=%d: got %v, want %v", n, got, want)
		}
		if len(inst.Values()) != n {
			t.Fatalf("n=%d: %d values", n, len(inst.Values()))
		}
	}
}

func TestParameterEndlessString(t *testing.T) {
	p := ParameterSchema{Type: EndlessString}
	inst, err := p.ParseLine("key   the rest   of the line")
	if err != nil {
		t.Fatal(err)
	}
	vals := inst.Values()
	if len(vals) != 1 || vals[0].Text() != "the rest   of the line" {
		t.Fatalf("values = %+v", vals)
	}
	empty, err := p.ParseLine("key")
	if err != nil {
		t.Fatal(err)
	}
	if v := empty.Values(); len(v) != 1 || v[0].Text() != "" {
		t.Fatalf("empty endless = %+v", v)
	}
}

func TestParameterCountErrors(t *testing.T) {
	cases := []struct {
		p    ParameterSchema
		line string
		want error
	}{
		{ParameterSchema{Type: Real, Count: 3}, "size 1 2", ErrMissingValue},
		{ParameterSchema{Type: Real, Count: 3}, "size 1 2 3 4", ErrUnexpectedToken},
		{ParameterSchema{Type: String, Count: 1}, "texture", ErrMissingValue},
		{ParameterSchema{Type: Nothing}, "drivethrough yes", ErrUnexpectedToken},
		{ParameterSchema{Type: Real, Count: 1}, "rotation 4five", ErrMalformedNumber},
		{ParameterSchema{Type: Real, Count: 1}, "rotation 1_0", ErrMalformedNumber},
		{ParameterSchema{Type: Real, Count: 2}, "scale 0x1p4 1", ErrMalformedNumber},
		{ParameterSchema{Type: Real, Count: 1}, "rotation 1e", ErrMalformedNumber},
		{ParameterSchema{Type: Real, Count: 1}, "rotation .", ErrMalformedNumber},
		{ParameterSchema{Type: Real, Count: -5}, "size 1", ErrInvalidField},
		{ParameterSchema{Type: ValueType(9), Count: 1}, "size 1", ErrInvalidField},
	}
	for _, c := range cases {
		_, err := c.p.ParseLine(c.line)
		if !errors.Is(err, c.want) {
			t.Fatalf("%q: got %v, want %v", c.line, err, c.want)
		}
	}
}

func TestParameterAcceptsPlainNumerals(t *testing.T) {
	p := ParameterSchema{Type: Real, Count: Unbounded}
	inst, err := p.ParseLine("shift -1 +2.5 .5 3. 1e3 -2E-2")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-1, 2.5, 0.5, 3, 1000, -0.02}
	if got := inst.Reals(); !slices.Equal(got, want) {
		t.Fatalf("reals = %v, want %v", got, want)
	}
}

func TestParameterUnboundedAndStrings(t *testing.T) {
	p := ParameterSchema{Type: String, Count: Unbounded}
	inst, err := p.ParseLine("matref  a  b\tc")
	if err != nil {
		t.Fatal(err)
	}
	if got := inst.Texts(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("texts = %v", got)
	}
	for _, v := range inst.Values() {
		if v.Kind() != String {
			t.Fatalf("kind = %v", v.Kind())
		}
	}
}

func TestZeroParameterInstanceIsEmpty(t *testing.T) {
	var p ParameterInstance
	if len(p.Values()) != 0 {
		t.Fatalf("zero instance should have no values")
	}
}

func TestValueString(t *testing.T) {
	if s := RealValue(1.5).String(); s != "1.5" {
		t.Fatalf("real = %q", s)
	}
	if s := RealValue(-0.1).String(); s != "-0.1" {
		t.Fatalf("real = %q", s)
	}
	if s := StringValue("w").String(); s != "w" {
		t.Fatalf("string = %q", s)
	}
	if RealValue(2).Text() != "" || StringValue("x").Real() != 0 {
		t.Fatalf("inactive representation should be zero")
	}
}

func TestTokenizeColumns(t *testing.T) {
	toks := tokenize("  size\t1.0  2")
	want := []token{{"size", 3}, {"1.0", 8}, {"2", 13}}
	if !slices.Equal(toks, want) {
		t.Fatalf("tokens = %+v", toks)
	}
	l := line{text: "box  a  b ", tokens: tokenize("box  a  b ")}
	if got := l.restFrom(1); got != "a  b" {
		t.Fatalf("rest = %q", got)
	}
	if got := l.restFrom(5); got != "" {
		t.Fatalf("rest past end = %q", got)
	}
}

func TestLineReaderSkipsBOMAndComments(t *testing.T) {
	lr := newLineReader(strings.NewReader("\uFEFFbox\n  # c\n\n\t\nend"), "#")
	l, ok := lr.next()
	if !ok || l.ident() != "box" || l.no != 1 {
		t.Fatalf("first line = %+v", l)
	}
	l, ok = lr.next()
	if !ok || l.ident() != "end" || l.no != 5 {
		t.Fatalf("second line = %+v", l)
	}
	if _, ok := lr.next(); ok || lr.err != nil {
		t.Fatalf("expected clean end of input, err=%v", lr.err)
	}
}
