// Package rule builds and checks catalog rule conditions.
//
// Conditions are CEL expressions over a single variable, product, a map with
// at least the "sku" key. A rule applies to a product when its condition
// evaluates to true.
package rule

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const moduleName = "rule"

// AlwaysTrue is the condition of group-wide rules.
const AlwaysTrue = "true"

// SkuCondition returns the condition matching exactly one SKU.
func SkuCondition(sku string) string {
	return "product.sku == " + strconv.Quote(sku)
}

// Evaluator compiles conditions once and evaluates them against products.
// It is safe for concurrent use.
type Evaluator struct {
	env      *cel.Env
	prgCache map[string]cel.Program
	mu       sync.RWMutex
}

// NewEvaluator creates an Evaluator with the product variable declared.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("product", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &Evaluator{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// Matches evaluates condition against product.
func (e *Evaluator) Matches(condition string, product map[string]interface{}) (bool, error) {
	prg, err := e.program(condition)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]interface{}{"product": product})
	if err != nil {
		return false, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "condition '%s' failed to evaluate", condition, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "condition '%s' does not yield a boolean", condition)
	}
	return matched, nil
}

// Validate checks that condition compiles and selects sku.
func (e *Evaluator) Validate(condition, sku string) error {
	matched, err := e.Matches(condition, map[string]interface{}{"sku": sku})
	if err != nil {
		return err
	}
	if !matched {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"condition '%s' does not select sku '%s'", condition, sku)
	}
	return nil
}

func (e *Evaluator) program(condition string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[condition]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.prgCache[condition]; hit {
		return prg, nil
	}
	ast, issues := e.env.Compile(condition)
	if issues != nil && issues.Err() != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "condition '%s' does not compile", condition, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "condition '%s' cannot be planned", condition, err)
	}
	e.prgCache[condition] = prg
	return prg, nil
}
