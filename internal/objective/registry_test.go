package objective

import (
	"errors"
	"sort"
	"testing"
)

func TestResolveReturnsBuiltins(t *testing.T) {
	for _, name := range []string{"sum", "sphere", "rastrigin", "rosenbrock", "ackley", "schwefel", "griewank"} {
		spec, err := Resolve(name)
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		if spec.Fn == nil {
			t.Fatalf("resolve %s: nil function", name)
		}
		if spec.InitMax <= spec.InitMin {
			t.Fatalf("resolve %s: bounds [%v, %v)", name, spec.InitMin, spec.InitMax)
		}
	}
}

func TestResolveUnknownObjective(t *testing.T) {
	_, err := Resolve("does_not_exist")
	if !errors.Is(err, ErrObjectiveNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	spec := Spec{Name: "registry_test_duplicate", Fn: Sum, InitMin: 0, InitMax: 1}
	if err := Register(spec); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(spec); !errors.Is(err, ErrObjectiveExists) {
		t.Fatalf("expected already-registered error, got %v", err)
	}
}

func TestRegisterValidatesSpec(t *testing.T) {
	if err := Register(Spec{Fn: Sum, InitMin: 0, InitMax: 1}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := Register(Spec{Name: "registry_test_nil_fn", InitMin: 0, InitMax: 1}); err == nil {
		t.Fatal("expected error for nil function")
	}
	if err := Register(Spec{Name: "registry_test_bounds", Fn: Sum, InitMin: 1, InitMax: 1}); err == nil {
		t.Fatal("expected error for empty bounds interval")
	}
}

func TestListIsSortedAndContainsBuiltins(t *testing.T) {
	names := List()
	if !sort.StringsAreSorted(names) {
		t.Fatalf("list not sorted: %v", names)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
	}
	for _, builtin := range []string{"sum", "sphere", "rastrigin"} {
		if _, ok := seen[builtin]; !ok {
			t.Fatalf("builtin %s missing from list %v", builtin, names)
		}
	}
}
