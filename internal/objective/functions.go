package objective

import "math"

// Sum returns the plain total of all genes.
func Sum(genes []float64) float64 {
	total := 0.0
	for _, gene := range genes {
		total += gene
	}
	return total
}

// Sphere returns the negated sphere benchmark.
func Sphere(genes []float64) float64 {
	sum := 0.0
	for _, x := range genes {
		sum += x * x
	}
	return -sum
}

// Rastrigin returns the negated Rastrigin benchmark.
func Rastrigin(genes []float64) float64 {
	sum := 10.0 * float64(len(genes))
	for _, x := range genes {
		sum += x*x - 10.0*math.Cos(2.0*math.Pi*x)
	}
	return -sum
}

// Rosenbrock returns the negated Rosenbrock benchmark.
func Rosenbrock(genes []float64) float64 {
	sum := 0.0
	for i := 0; i < len(genes)-1; i++ {
		term1 := genes[i+1] - genes[i]*genes[i]
		term2 := 1.0 - genes[i]
		sum += 100.0*term1*term1 + term2*term2
	}
	return -sum
}

// Ackley returns the negated Ackley benchmark.
func Ackley(genes []float64) float64 {
	n := float64(len(genes))
	sum1 := 0.0
	sum2 := 0.0
	for _, x := range genes {
		sum1 += x * x
		sum2 += math.Cos(2.0 * math.Pi * x)
	}
	value := -20.0*math.Exp(-0.2*math.Sqrt(sum1/n)) - math.Exp(sum2/n) + 20.0 + math.E
	return -value
}

// Schwefel returns the negated Schwefel benchmark.
func Schwefel(genes []float64) float64 {
	sum := 418.9829 * float64(len(genes))
	for _, x := range genes {
		sum -= x * math.Sin(math.Sqrt(math.Abs(x)))
	}
	return -sum
}

// Griewank returns the negated Griewank benchmark.
func Griewank(genes []float64) float64 {
	sum := 0.0
	product := 1.0
	for i, x := range genes {
		sum += x * x / 4000.0
		product *= math.Cos(x / math.Sqrt(float64(i+1)))
	}
	return -(sum - product + 1.0)
}
