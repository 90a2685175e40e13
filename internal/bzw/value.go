/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType selects how a parameter reads its values and which
// representation its Values carry.
type ValueType int

const (
	// Nothing expects no values; the presence of the parameter is the signal.
	Nothing ValueType = iota
	// Real expects floating point numbers.
	Real
	// String expects single whitespace-free words.
	String
	// EndlessString takes all text up to the end of the line as one value.
	EndlessString
)

func (t ValueType) String() string {
	switch t {
	case Nothing:
		return "nothing"
	case Real:
		return "real"
	case String:
		return "string"
	case EndlessString:
		return "endless_string"
	default:
		return "ValueType(" + strconv.Itoa(int(t)) + ")"
	}
}

func (t ValueType) valid() bool { return t >= Nothing && t <= EndlessString }

// ParseValueType maps the names used in schema declaration files to a
// ValueType. Matching is case-insensitive; "endless" and "text" are accepted
// as aliases of "endless_string", "number" as an alias of "real".
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nothing", "none", "flag":
		return Nothing, nil
	case "real", "number", "float":
		return Real, nil
	case "string", "word":
		return String, nil
	case "endless_string", "endless", "text":
		return EndlessString, nil
	}
	return Nothing, fmt.Errorf("unknown value type %q", s)
}

// Value is a tagged scalar read from a parameter occurrence. Exactly one of
// the numeric or text representations is active, as reported by Kind.
type Value struct {
	kind ValueType
	num  float64
	text string
}

// RealValue returns a Value holding a number.
func RealValue(f float64) Value { return Value{kind: Real, num: f} }

// StringValue returns a Value holding a single word.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// EndlessValue returns a Value holding the remainder of a line.
func EndlessValue(s string) Value { return Value{kind: EndlessString, text: s} }

func (v Value) Kind() ValueType { return v.kind }

// Real returns the number for Real values and 0 otherwise.
func (v Value) Real() float64 { return v.num }

// Text returns the text for String and EndlessString values and "" otherwise.
func (v Value) Text() string { return v.text }

// String renders the value the way it is written in a file.
func (v Value) String() string {
	if v.kind == Real {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}
