package genome

import "math/rand"

// DefaultScale is the perturbation half-width Mutate falls back to when no
// explicit scale is configured on the vector.
const DefaultScale = 0.1

// Vector is a fixed-length real-valued genome scored by an objective
// function over its genes. Higher objective values are better.
type Vector struct {
	Genes     []float64
	Objective func(genes []float64) float64
	// Scale overrides DefaultScale as Mutate's perturbation half-width
	// when positive.
	Scale float64
}

// New copies genes into a fresh vector so the caller's slice stays
// independent.
func New(genes []float64, objective func(genes []float64) float64) *Vector {
	return &Vector{Genes: append([]float64(nil), genes...), Objective: objective}
}

func (v *Vector) Fitness() float64 {
	return v.Objective(v.Genes)
}

// Crossover splits both parents at the midpoint: the first child takes the
// receiver's head and the other parent's tail, the second child the
// complement. Neither parent is modified.
func (v *Vector) Crossover(other *Vector) (*Vector, *Vector) {
	mid := len(v.Genes) / 2

	firstGenes := make([]float64, len(v.Genes))
	copy(firstGenes, v.Genes[:mid])
	copy(firstGenes[mid:], other.Genes[mid:])

	secondGenes := make([]float64, len(other.Genes))
	copy(secondGenes, other.Genes[:mid])
	copy(secondGenes[mid:], v.Genes[mid:])

	return v.withGenes(firstGenes), v.withGenes(secondGenes)
}

// Mutate perturbs one uniformly chosen gene by a uniform delta in
// [-scale, scale), where scale is Scale or DefaultScale.
func (v *Vector) Mutate(rng *rand.Rand) {
	v.MutateScaled(rng, v.scale())
}

// MutateScaled perturbs one uniformly chosen gene with the supplied
// half-width instead of the vector's own scale.
func (v *Vector) MutateScaled(rng *rand.Rand, strength float64) {
	if len(v.Genes) == 0 {
		return
	}
	idx := rng.Intn(len(v.Genes))
	v.Genes[idx] += (rng.Float64()*2 - 1) * strength
}

func (v *Vector) Clone() *Vector {
	return v.withGenes(append([]float64(nil), v.Genes...))
}

func (v *Vector) withGenes(genes []float64) *Vector {
	return &Vector{Genes: genes, Objective: v.Objective, Scale: v.Scale}
}

func (v *Vector) scale() float64 {
	if v.Scale > 0 {
		return v.Scale
	}
	return DefaultScale
}

// Generator returns a factory producing vectors of the given length with
// genes drawn uniformly from [min, max).
func Generator(length int, min, max float64, objective func(genes []float64) float64) func(rng *rand.Rand) *Vector {
	return func(rng *rand.Rand) *Vector {
		genes := make([]float64, length)
		for i := range genes {
			genes[i] = min + rng.Float64()*(max-min)
		}
		return &Vector{Genes: genes, Objective: objective}
	}
}
