package netflow

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ObjectEnv is the expression environment a query filter runs against.
// Details is the raw policy object as stored in the template document.
type ObjectEnv struct {
	Details map[string]any
}

func (e ObjectEnv) All() bool {
	return true
}

func (e ObjectEnv) None() bool {
	return false
}

func (e ObjectEnv) Names(vals ...string) bool {
	if len(vals) == 0 {
		return true
	}
	name, _ := e.Details["name"].(string)
	for _, val := range vals {
		if val == name {
			return true
		}
	}
	return false
}

func (e ObjectEnv) Name(vals ...string) bool {
	return e.Names(vals...)
}

func (e ObjectEnv) UUIDs(vals ...string) bool {
	if len(vals) == 0 {
		return true
	}
	uuid, _ := e.Details["uuid"].(string)
	for _, val := range vals {
		if val == uuid {
			return true
		}
	}
	return false
}

func (e ObjectEnv) UUID(vals ...string) bool {
	return e.UUIDs(vals...)
}

// Has reports whether the object carries the given top-level field.
func (e ObjectEnv) Has(key string) bool {
	_, ok := e.Details[key]
	return ok
}

// Field returns a top-level field value, or nil when absent.
func (e ObjectEnv) Field(key string) any {
	return e.Details[key]
}

// FilterProgram is a compiled query filter.
type FilterProgram struct {
	prog *vm.Program
}

// CompileFilter compiles a boolean filter expression such as
// `Name("exp1", "exp2")` or `Field("destPort") == 2055`.
func CompileFilter(src string) (*FilterProgram, error) {
	prog, err := expr.Compile(src, expr.Env(ObjectEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("netflow: compiling filter expression: %w", err)
	}
	return &FilterProgram{prog: prog}, nil
}

// Match evaluates the filter against one policy object.
func (p *FilterProgram) Match(details map[string]any) (bool, error) {
	pass, err := expr.Run(p.prog, ObjectEnv{Details: details})
	if err != nil {
		return false, fmt.Errorf("netflow: executing filter expression: %w", err)
	}
	return pass.(bool), nil
}
