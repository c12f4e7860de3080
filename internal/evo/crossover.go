package evo

// SinglePointCrossover emits exactly two children per parent pair by
// delegating to the candidates' own Crossover capability. One call yields
// both children.
type SinglePointCrossover[C Candidate[C]] struct{}

func (SinglePointCrossover[C]) Name() string {
	return "single_point"
}

func (SinglePointCrossover[C]) Crossover(parent1, parent2 C) []C {
	first, second := parent1.Crossover(parent2)
	return []C{first, second}
}
