package sim

import "math"

// choiceProbs derives the (keep, change, alt) distribution for one
// participant from its own resistance and the counterpart's persuasion.
func choiceProbs(resistance, persuasion float64) [3]float64 {
	keep := resistance * (1 - persuasion)
	change := (1 - resistance) * persuasion
	alt := resistance * persuasion
	return normalizeTriple(keep, change, alt)
}

// normalizeTriple scales a non-negative triple to sum 1, falling back to
// the uniform distribution when the whole mass is zero.
func normalizeTriple(a, b, c float64) [3]float64 {
	total := a + b + c
	if total <= 0 {
		return [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	return [3]float64{a / total, b / total, c / total}
}

// locate maps an ordered vote pair to its index in the 9-element joint
// space: (va-1)*3 + (vb-1) for votes in {1,2,3}.
func locate(va, vb int) int {
	return (va-1)*3 + (vb - 1)
}

// transitionMatrix builds the row-stochastic 9x9 matrix for an ordered
// pair at their current parameters. Only the two disagreement rows
// between options 1 and 2 carry rules; every other row stays identity.
func transitionMatrix(alice, bob Agent) [9][9]float64 {
	aliceProbs := choiceProbs(alice.Rho, bob.Pi)
	bobProbs := choiceProbs(bob.Rho, alice.Pi)

	var m [9][9]float64
	for i := 0; i < 9; i++ {
		m[i][i] = 1
	}
	applyDisagreement(&m, 1, 2, aliceProbs, bobProbs)
	applyDisagreement(&m, 2, 1, bobProbs, aliceProbs)
	return m
}

// applyDisagreement overwrites the nine cells of row (va,vb) that spread
// the pair's joint mass across keep/change/alt outcomes for both sides.
func applyDisagreement(m *[9][9]float64, va, vb int, a, b [3]float64) {
	row := locate(va, vb)
	set := func(ta, tb int, v float64) {
		m[row][locate(ta, tb)] = v
	}
	set(va, vb, a[0]*b[0])
	set(va, va, a[0]*b[1])
	set(vb, vb, a[1]*b[0])
	set(vb, va, a[1]*b[1])
	set(va, 3, a[0]*b[2])
	set(3, vb, a[2]*b[0])
	set(3, 3, a[2]*b[2])
	set(vb, 3, a[1]*b[2])
	set(3, va, a[2]*b[1])
}

// talk runs one dialogue: the joint distribution of the pair's current
// preferences is pushed through the transition matrix, marginalized back
// to each participant, rounded to four decimals, and renormalized. It is
// a pure function of its inputs and touches no shared state.
func talk(alice, bob Agent) ([3]float64, [3]float64) {
	t := transitionMatrix(alice, bob)

	var v [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v[3*i+j] = alice.Prefs[i] * bob.Prefs[j]
		}
	}

	var r [9]float64
	for k := 0; k < 9; k++ {
		for j := 0; j < 9; j++ {
			r[j] += v[k] * t[k][j]
		}
	}

	var aliceMarg, bobMarg [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			aliceMarg[i] += r[3*i+j]
			bobMarg[j] += r[3*i+j]
		}
	}

	for c := 0; c < 3; c++ {
		aliceMarg[c] = roundTo(aliceMarg[c], 4)
		bobMarg[c] = roundTo(bobMarg[c], 4)
	}
	return normalizeTriple(aliceMarg[0], aliceMarg[1], aliceMarg[2]),
		normalizeTriple(bobMarg[0], bobMarg[1], bobMarg[2])
}

// roundTo rounds to the given number of decimal digits with ties to even,
// matching the reference rounding pipeline.
func roundTo(x float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.RoundToEven(x*pow) / pow
}

// checkPrefs guards the per-dialogue invariants: components must be
// non-negative and sum to one within tolerance.
func checkPrefs(p [3]float64) error {
	if p[0] < 0 || p[1] < 0 || p[2] < 0 {
		return invariantf("negative preference component in %v", p)
	}
	if sum := p[0] + p[1] + p[2]; math.Abs(sum-1) > 1e-3 {
		return invariantf("preference sum %g deviates from 1", sum)
	}
	return nil
}
