/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package world declares the classic BZFlag map grammar on top of the bzw
// parser and adds map-level checks the grammar alone cannot express.
package world

import (
	"errors"
	"fmt"
	"sync"

	"bzwparse/internal/bzw"
)

type param struct {
	name       string
	typ        bzw.ValueType
	count      int
	repeatable bool
}

var (
	name         = param{"name", bzw.EndlessString, 1, false}
	position     = param{"position", bzw.Real, 3, false}
	size         = param{"size", bzw.Real, 3, false}
	rotation     = param{"rotation", bzw.Real, 1, false}
	color        = param{"color", bzw.Real, 4, false}
	drivethrough = param{"drivethrough", bzw.Nothing, 0, false}
	shootthrough = param{"shootthrough", bzw.Nothing, 0, false}
	passable     = param{"passable", bzw.Nothing, 0, false}
)

// solid is shared by every placed obstacle.
var solid = []param{name, position, size, rotation, drivethrough, shootthrough, passable}

// objectParams lists the parameters of every top-level object. Repeatable
// objects may occur any number of times in a map.
var objectParams = map[string]struct {
	repeatable bool
	params     []param
}{
	"world": {false, []param{
		name, {"size", bzw.Real, 1, false}, {"flagHeight", bzw.Real, 1, false},
		{"noWalls", bzw.Nothing, 0, false}, {"freeCtfSpawns", bzw.Nothing, 0, false},
	}},
	"waterLevel": {false, []param{
		name, {"height", bzw.Real, 1, false}, {"matref", bzw.String, 1, true},
	}},
	"box":     {true, append(clone(solid), color)},
	"pyramid": {true, append(clone(solid), color, param{"flipz", bzw.Nothing, 0, false})},
	"base": {true, append(clone(solid),
		param{"color", bzw.Real, 1, false}, param{"oncap", bzw.String, 1, false},
	)},
	"teleporter": {true, append(clone(solid), param{"border", bzw.Real, 1, false})},
	"link": {true, []param{
		name, {"from", bzw.String, 1, false}, {"to", bzw.String, 1, false},
	}},
	"zone": {true, []param{
		name, position, size, rotation,
		{"flag", bzw.String, bzw.Unbounded, true},
		{"zoneflag", bzw.String, bzw.Unbounded, true},
		{"team", bzw.Real, bzw.Unbounded, true},
		{"safety", bzw.Real, bzw.Unbounded, true},
	}},
	"weapon": {true, []param{
		name, position, rotation,
		{"type", bzw.String, 1, false},
		{"initdelay", bzw.Real, 1, false},
		{"delay", bzw.Real, bzw.Unbounded, false},
		{"tilt", bzw.Real, 1, false},
		{"trigger", bzw.String, 1, false},
		{"eventteam", bzw.Real, 1, false},
	}},
	"group": {true, []param{
		name,
		{"shift", bzw.Real, 3, true},
		{"scale", bzw.Real, 3, true},
		{"spin", bzw.Real, 4, true},
		{"shear", bzw.Real, 3, true},
		{"team", bzw.Real, 1, false},
		{"tint", bzw.Real, 4, false},
		{"phydrv", bzw.String, 1, false},
		{"matref", bzw.String, 1, false},
		drivethrough, shootthrough,
	}},
	"physics": {true, []param{
		name,
		{"linear", bzw.Real, 3, false},
		{"angular", bzw.Real, 3, false},
		{"radial", bzw.Real, 1, false},
		{"slide", bzw.Real, 1, false},
		{"death", bzw.EndlessString, 1, false},
	}},
	"material": {true, []param{
		name,
		{"texture", bzw.String, 1, true},
		{"notextures", bzw.Nothing, 0, false},
		{"addtexture", bzw.String, 1, true},
		{"dyncol", bzw.String, 1, false},
		{"ambient", bzw.Real, 4, false},
		{"diffuse", bzw.Real, 4, false},
		{"specular", bzw.Real, 4, false},
		{"emission", bzw.Real, 4, false},
		{"shininess", bzw.Real, 1, false},
		{"noculling", bzw.Nothing, 0, false},
		{"nosorting", bzw.Nothing, 0, false},
	}},
	"dynamicColor": {true, []param{
		name,
		{"red", bzw.String, bzw.Unbounded, true},
		{"green", bzw.String, bzw.Unbounded, true},
		{"blue", bzw.String, bzw.Unbounded, true},
		{"alpha", bzw.String, bzw.Unbounded, true},
	}},
}

func clone(ps []param) []param { return append([]param(nil), ps...) }

// Kinds returns the top-level object identifiers of the grammar.
func Kinds() []string {
	out := make([]string, 0, len(objectParams))
	for k := range objectParams {
		out = append(out, k)
	}
	return out
}

// Schema builds the world grammar with the given syntax options.
func Schema(opts bzw.Options) (*bzw.Schema, error) {
	b := bzw.NewSchemaBuilder()
	var errs []error
	for kind, def := range objectParams {
		o := bzw.NewObject(def.repeatable)
		for _, p := range def.params {
			if err := o.ManageParameter(p.name, p.typ, p.count, p.repeatable); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", kind, p.name, err))
			}
		}
		if err := b.ManageObject(kind, o); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return b.Build(opts)
}

// Default returns the world grammar with bzw.DefaultOptions, built once.
var Default = sync.OnceValues(func() (*bzw.Schema, error) {
	return Schema(bzw.DefaultOptions())
})
