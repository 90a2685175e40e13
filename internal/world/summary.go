/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package world

import (
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"bzwparse/internal/bzw"
)

// Link is one teleporter link as written in the map.
type Link struct {
	From, To string
	Line     int
}

// Summary is a per-map overview used by reports and the check command.
type Summary struct {
	Counts      map[string]int // top-level objects per kind
	Teleporters []string       // in map order; unnamed ones appear as ""
	Links       []Link
	WorldSize   float64 // half-width from the world block, 0 when absent
	Diagnostics int
}

// Kinds returns the kinds present in the map, sorted.
func (s Summary) Kinds() []string {
	out := make([]string, 0, len(s.Counts))
	for k := range s.Counts {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Total is the number of top-level objects.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Summarize walks a parsed map. It works on any document; kinds it does not
// know are only counted.
func Summarize(doc *bzw.Document) Summary {
	s := Summary{Counts: make(map[string]int), Diagnostics: len(doc.Diagnostics())}
	for kind, obj := range doc.Objects().All() {
		s.Counts[kind]++
		switch kind {
		case "teleporter":
			s.Teleporters = append(s.Teleporters, objectName(obj))
		case "link":
			var l Link
			l.Line = obj.Line()
			if p, ok := obj.Parameter("from"); ok {
				l.From = p.Texts()[0]
			}
			if p, ok := obj.Parameter("to"); ok {
				l.To = p.Texts()[0]
			}
			s.Links = append(s.Links, l)
		case "world":
			if p, ok := obj.Parameter("size"); ok {
				s.WorldSize = p.Reals()[0]
			}
		}
	}
	return s
}

// objectName prefers the name on the opening line over a name parameter.
func objectName(o *bzw.ObjectInstance) string {
	if n := o.Name(); n != "" {
		return n
	}
	if p, ok := o.Parameter("name"); ok {
		return p.Values()[0].Text()
	}
	return ""
}

// Problem is a map-level inconsistency found by Validate.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string { return fmt.Sprintf("line %d: %s", p.Line, p.Message) }

// Validate checks every link endpoint against the teleporters in the map.
// Endpoints are either a teleporter name, optionally with a ":f", ":b" or
// ":*" face suffix and glob wildcards, or a numeric face index as used by
// older maps (teleporter i owns faces 2i and 2i+1).
func (s Summary) Validate() []Problem {
	var out []Problem
	for _, l := range s.Links {
		for _, ep := range []struct{ dir, ref string }{{"from", l.From}, {"to", l.To}} {
			if ep.ref == "" {
				out = append(out, Problem{Line: l.Line, Message: fmt.Sprintf("link has no %q endpoint", ep.dir)})
				continue
			}
			if !s.resolves(ep.ref) {
				out = append(out, Problem{Line: l.Line,
					Message: fmt.Sprintf("link %s %q matches no teleporter", ep.dir, ep.ref)})
			}
		}
	}
	return out
}

func (s Summary) resolves(ref string) bool {
	if n, err := strconv.Atoi(ref); err == nil {
		return n >= 0 && n/2 < len(s.Teleporters)
	}
	pattern := ref
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		switch ref[i+1:] {
		case "f", "b", "*", "?":
			pattern = ref[:i]
		}
	}
	for _, t := range s.Teleporters {
		if t == "" {
			continue
		}
		if ok, err := path.Match(pattern, t); err == nil && ok {
			return true
		}
	}
	return false
}
