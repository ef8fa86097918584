// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Named, pluggable script functions.
 *
 * Description:	A FunctionSpec is registered once at start up and never
 *		changes.  Lookup hands out a brand new FunctionInstance
 *		each time; the instance gets its arguments once when the
 *		script is built and is then run for every message that
 *		script decodes.
 *
 *		An instance must not be shared by two decodes running at
 *		the same time.  Get another one from Lookup instead.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"slices"
	"strings"
)

// FunctionInstance is a function with its arguments.
type FunctionInstance interface {
	Step

	// Name is the registered name, lower case.
	Name() string

	// SetArguments parses the raw argument text, once, at script build time.
	SetArguments(args string, script *Script) error
}

// FunctionSpec is the immutable prototype.
type FunctionSpec struct {
	Name string
	New  func() FunctionInstance
}

// Registry maps lower case names to prototypes.  Register everything
// before the first Lookup; after that it is read only and can be shared.
type Registry struct {
	specs map[string]FunctionSpec
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	var r = NewEmptyRegistry()

	for _, spec := range builtinFunctions() {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}

	return r
}

// NewEmptyRegistry has nothing in it.
func NewEmptyRegistry() *Registry {
	return &Registry{specs: make(map[string]FunctionSpec)}
}

func builtinFunctions() []FunctionSpec {
	return []FunctionSpec{
		{Name: CsvFunctionName, New: func() FunctionInstance { return new(CsvFunction) }},
		{Name: RegexFunctionName, New: func() FunctionInstance { return new(RegexFunction) }},
		{Name: SetMissingFunctionName, New: func() FunctionInstance { return new(SetMissingFunction) }},
		{Name: Nos6MinFunctionName, New: func() FunctionInstance { return NewNos6Min() }},
	}
}

func (r *Registry) Register(spec FunctionSpec) error {
	var name = strings.ToLower(spec.Name)

	if name == "" || spec.New == nil {
		return fmt.Errorf("function spec needs a name and a constructor")
	}

	if _, exists := r.specs[name]; exists {
		return fmt.Errorf("function '%s' is already registered", name)
	}

	spec.Name = name
	r.specs[name] = spec

	return nil
}

// Lookup returns a new instance, matching the name without regard to case.
func (r *Registry) Lookup(name string) (FunctionInstance, bool) {
	var spec, ok = r.specs[strings.ToLower(name)]
	if !ok {
		return nil, false
	}

	return spec.New(), true
}

// Names lists what is registered, sorted.
func (r *Registry) Names() []string {
	var names = make([]string, 0, len(r.specs))
	for n := range r.specs {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}
