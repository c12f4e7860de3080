package objective

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Func scores a gene vector; higher is better. The built-in minimization
// benchmarks are negated so each optimum becomes a maximum at zero.
type Func func(genes []float64) float64

// Spec describes a registered objective together with the gene bounds its
// benchmark convention initializes from.
type Spec struct {
	Name        string
	Fn          Func
	Description string
	InitMin     float64
	InitMax     float64
}

var (
	ErrObjectiveExists   = errors.New("objective already registered")
	ErrObjectiveNotFound = errors.New("objective not found")
)

var registry = struct {
	mu sync.RWMutex
	m  map[string]Spec
}{
	m: make(map[string]Spec),
}

// Register adds an objective under its spec name. Registering a taken name
// fails so callers cannot silently shadow a builtin.
func Register(spec Spec) error {
	if spec.Name == "" {
		return errors.New("objective name is required")
	}
	if spec.Fn == nil {
		return errors.New("objective function is required")
	}
	if spec.InitMax <= spec.InitMin {
		return fmt.Errorf("objective %s: init bounds must satisfy max > min", spec.Name)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrObjectiveExists, spec.Name)
	}
	registry.m[spec.Name] = spec
	return nil
}

// Resolve returns the registered objective for name.
func Resolve(name string) (Spec, error) {
	registry.mu.RLock()
	spec, ok := registry.m[name]
	registry.mu.RUnlock()

	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrObjectiveNotFound, name)
	}
	return spec, nil
}

func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustRegister(spec Spec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

func init() {
	mustRegister(Spec{Name: "sum", Fn: Sum, Description: "plain gene total, unbounded optimum", InitMin: 0, InitMax: 1})
	mustRegister(Spec{Name: "sphere", Fn: Sphere, Description: "negated sphere, unimodal, optimum 0 at the origin", InitMin: -5.12, InitMax: 5.12})
	mustRegister(Spec{Name: "rastrigin", Fn: Rastrigin, Description: "negated Rastrigin, highly multimodal, optimum 0 at the origin", InitMin: -5.12, InitMax: 5.12})
	mustRegister(Spec{Name: "rosenbrock", Fn: Rosenbrock, Description: "negated Rosenbrock, narrow curved valley, optimum 0 at all ones", InitMin: -2.048, InitMax: 2.048})
	mustRegister(Spec{Name: "ackley", Fn: Ackley, Description: "negated Ackley, many local optima, optimum 0 at the origin", InitMin: -32.768, InitMax: 32.768})
	mustRegister(Spec{Name: "schwefel", Fn: Schwefel, Description: "negated Schwefel, deceptive, optimum 0 near 420.97 per gene", InitMin: -500, InitMax: 500})
	mustRegister(Spec{Name: "griewank", Fn: Griewank, Description: "negated Griewank, product term couples genes, optimum 0 at the origin", InitMin: -600, InitMax: 600})
}
