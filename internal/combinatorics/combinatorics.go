package combinatorics

import "fmt"

// MaxFactorial is the largest n whose factorial fits in a uint64 (20! ~ 2.4e18).
const MaxFactorial = 20

// Factorial returns n! computed recursively.
// Inputs above MaxFactorial overflow a uint64 and panic; use PartialFactorial
// for large bases.
func Factorial(n uint) uint64 {
	if n > MaxFactorial {
		panic(fmt.Sprintf("combinatorics: factorial(%d) overflows uint64", n))
	}
	if n > 1 {
		return uint64(n) * Factorial(n-1)
	}
	return 1
}

// PartialFactorial multiplies only the numTerms highest terms of n!:
//
//	PartialFactorial(10, 4) = 10 * 9 * 8 * 7
//
// numTerms == 0 returns 1 (empty product). The result is a float64 because
// the products used for the draw (80 taken up to 20) exceed uint64.
func PartialFactorial(n, numTerms uint) float64 {
	result := 1.0
	for i := uint(0); i < numTerms; i++ {
		result *= float64(n) - float64(i)
	}
	return result
}

// Combinations returns C(n, r), the number of r-sized subsets of an n-element
// set, or 0 when r > n. It uses exact factorials and is therefore only valid
// for n <= MaxFactorial.
func Combinations(n, r uint) uint64 {
	if r > n {
		return 0
	}
	return Factorial(n) / (Factorial(r) * Factorial(n-r))
}
