/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bzw

import "iter"

type entry[T any] struct {
	name  string
	value T
}

// Multimap is an insertion-ordered mapping from name to one or more values.
// Consumers only get read access; values are added while parsing.
type Multimap[T any] struct {
	entries []entry[T]
	index   map[string][]int
	names   []string
}

func (m *Multimap[T]) add(name string, v T) {
	if m.index == nil {
		m.index = make(map[string][]int)
	}
	if _, seen := m.index[name]; !seen {
		m.names = append(m.names, name)
	}
	m.index[name] = append(m.index[name], len(m.entries))
	m.entries = append(m.entries, entry[T]{name: name, value: v})
}

// Get returns the values stored under name in input order.
func (m Multimap[T]) Get(name string) []T {
	idx := m.index[name]
	if len(idx) == 0 {
		return nil
	}
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = m.entries[j].value
	}
	return out
}

// First returns the first value stored under name.
func (m Multimap[T]) First(name string) (T, bool) {
	idx := m.index[name]
	if len(idx) == 0 {
		var zero T
		return zero, false
	}
	return m.entries[idx[0]].value, true
}

// Count returns how many values are stored under name.
func (m Multimap[T]) Count(name string) int { return len(m.index[name]) }

// Len returns the total number of values.
func (m Multimap[T]) Len() int { return len(m.entries) }

// Names returns the distinct names in order of first appearance.
func (m Multimap[T]) Names() []string {
	return append([]string(nil), m.names...)
}

// All iterates over every (name, value) pair in input order.
func (m Multimap[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, e := range m.entries {
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}
