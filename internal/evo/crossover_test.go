package evo

import (
	"testing"
)

func TestSinglePointCrossoverEmitsTwoChildren(t *testing.T) {
	parent1 := &testCandidate{genes: []float64{1, 2, 3, 4}}
	parent2 := &testCandidate{genes: []float64{5, 6, 7, 8}}

	children := SinglePointCrossover[*testCandidate]{}.Crossover(parent1, parent2)
	if len(children) != 2 {
		t.Fatalf("child count: got=%d want=%d", len(children), 2)
	}
	if !equalGenes(children[0].genes, []float64{1, 2, 7, 8}) {
		t.Fatalf("first child genes: got=%v", children[0].genes)
	}
	if !equalGenes(children[1].genes, []float64{5, 6, 3, 4}) {
		t.Fatalf("second child genes: got=%v", children[1].genes)
	}
}

func TestSinglePointCrossoverLeavesParentsUntouched(t *testing.T) {
	parent1 := &testCandidate{genes: []float64{1, 2, 3, 4}}
	parent2 := &testCandidate{genes: []float64{5, 6, 7, 8}}

	SinglePointCrossover[*testCandidate]{}.Crossover(parent1, parent2)
	if !equalGenes(parent1.genes, []float64{1, 2, 3, 4}) {
		t.Fatalf("first parent modified: %v", parent1.genes)
	}
	if !equalGenes(parent2.genes, []float64{5, 6, 7, 8}) {
		t.Fatalf("second parent modified: %v", parent2.genes)
	}
}

func TestSinglePointCrossoverOddLengthSplitsBeforeMiddle(t *testing.T) {
	parent1 := &testCandidate{genes: []float64{1, 2, 3}}
	parent2 := &testCandidate{genes: []float64{4, 5, 6}}

	children := SinglePointCrossover[*testCandidate]{}.Crossover(parent1, parent2)
	if !equalGenes(children[0].genes, []float64{1, 5, 6}) {
		t.Fatalf("first child genes: got=%v", children[0].genes)
	}
	if !equalGenes(children[1].genes, []float64{4, 2, 3}) {
		t.Fatalf("second child genes: got=%v", children[1].genes)
	}
}
