package scanner

import (
	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity returns dot(a,b) / (|a| * |b|). If either vector has zero
// norm the similarity is 0. a and b must have the same length.
func CosineSimilarity(a, b []float64) float64 {
	return cosineWithNorm(a, floats.Norm(a, 2), b)
}

// cosineWithNorm lets the scanner reuse the reference norm across windows.
func cosineWithNorm(ref []float64, refNorm float64, window []float64) float64 {
	if refNorm == 0 {
		return 0
	}
	windowNorm := floats.Norm(window, 2)
	if windowNorm == 0 {
		return 0
	}
	return floats.Dot(ref, window) / (refNorm * windowNorm)
}
