package mie

import "math"

// degreeOffset maps degree n to slice index n+degreeOffset so the degree -1
// seed lives at index 0.
const degreeOffset = 1

// RiccatiBessel returns ψ_n(x) (real) and η_n(x) = ψ_n(x) + iχ_n(x) for
// degrees -1..nmax+1, stored at index n+1, using the three-term recurrence
// f_n = (2n-1)/x f_{n-1} - f_{n-2}.
func RiccatiBessel(x float64, nmax int) (psi []float64, eta []complex128) {
	size := nmax + 2 + degreeOffset
	psi = make([]float64, size)
	eta = make([]complex128, size)
	sin, cos := math.Sincos(x)
	psi[0], psi[1] = cos, sin
	eta[0], eta[1] = complex(cos, -sin), complex(sin, cos)
	for i := 1; i <= nmax+1; i++ {
		f := float64(2*i-1) / x
		psi[i+1] = f*psi[i] - psi[i-1]
		eta[i+1] = complex(f, 0)*eta[i] - eta[i-1]
	}
	return psi, eta
}
