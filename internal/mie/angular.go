package mie

// Angular holds π_n(cos α) and τ_n(cos α) for degrees 0..nmax. A worker keeps
// one and reuses it for every angle.
type Angular struct {
	Pi  []float64
	Tau []float64
}

// Compute fills degrees 0..nmax for mu = cos α, growing the buffers only
// when nmax exceeds their capacity.
func (a *Angular) Compute(mu float64, nmax int) {
	if cap(a.Pi) < nmax+1 {
		a.Pi = make([]float64, nmax+1)
		a.Tau = make([]float64, nmax+1)
	}
	a.Pi, a.Tau = a.Pi[:nmax+1], a.Tau[:nmax+1]
	a.Pi[0], a.Tau[0] = 0, 0
	if nmax < 1 {
		return
	}
	a.Pi[1], a.Tau[1] = 1, mu
	for i := 2; i <= nmax; i++ {
		previous := float64(i - 1)
		a.Pi[i] = a.Pi[i-1]*(2.*mu+mu/previous) - a.Pi[i-2]*(1.+1./previous)
		a.Tau[i] = float64(i)*(mu*a.Pi[i]-a.Pi[i-1]) - a.Pi[i-1]
	}
}
