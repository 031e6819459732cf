package main

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// EVA3ToGPa converts a bulk modulus from eV/Å³ to GPa
const EVA3ToGPa = 160.21766208

// Supported equation-of-state fit types
const (
	FitPolynomial     = "polynomial"
	FitMurnaghan      = "murnaghan"
	FitBirchMurnaghan = "birch_murnaghan"
)

// EOSFit holds the equilibrium properties extracted from an
// energy-volume curve. B0 is in GPa, V0 in Å³, E0 in eV.
type EOSFit struct {
	FitType string
	Order   int

	V0     float64
	E0     float64
	B0     float64
	BPrime float64

	// Coeffs are the polynomial coefficients in ascending order,
	// only set for polynomial fits
	Coeffs []float64

	Volumes  []float64
	Energies []float64
}

// PolyFit fits a polynomial of the given order to the points (x, y)
// by least squares and returns the coefficients in ascending order
func PolyFit(x, y []float64, order int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("PolyFit: dimension mismatch")
	}
	if len(x) < order+1 {
		return nil, fmt.Errorf("PolyFit: %d points cannot determine order %d",
			len(x), order)
	}
	a := mat.NewDense(len(x), order+1, nil)
	for i, xi := range x {
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= xi
		}
	}
	b := mat.NewDense(len(y), 1, y)
	var qr mat.QR
	qr.Factorize(a)
	var c mat.Dense
	if err := qr.SolveTo(&c, false, b); err != nil {
		return nil, fmt.Errorf("PolyFit: %w", err)
	}
	coeffs := make([]float64, order+1)
	for j := range coeffs {
		coeffs[j] = c.At(j, 0)
	}
	return coeffs, nil
}

// PolyVal evaluates the polynomial with ascending coefficients at x
func PolyVal(coeffs []float64, x float64) (y float64) {
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = y*x + coeffs[i]
	}
	return
}

// PolyDer returns the coefficients of the derivative polynomial
func PolyDer(coeffs []float64) []float64 {
	if len(coeffs) < 2 {
		return []float64{0}
	}
	der := make([]float64, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		der[i-1] = float64(i) * coeffs[i]
	}
	return der
}

// PolyRoots returns the roots of the polynomial as the eigenvalues of
// its companion matrix
func PolyRoots(coeffs []float64) ([]complex128, error) {
	// strip leading zero coefficients
	n := len(coeffs) - 1
	for n > 0 && coeffs[n] == 0 {
		n--
	}
	if n < 1 {
		return nil, nil
	}
	comp := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		comp.Set(0, i, -coeffs[n-1-i]/coeffs[n])
	}
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, fmt.Errorf("PolyRoots: eigendecomposition failed")
	}
	return eig.Values(nil), nil
}

// FitEOS fits the energy-volume points with the requested functional
// form. Murnaghan-type fits are seeded from a polynomial fit.
func FitEOS(vols, energies []float64, fitType string, order int) (*EOSFit, error) {
	if len(vols) != len(energies) {
		return nil, fmt.Errorf("FitEOS: dimension mismatch")
	}
	if !sort.Float64sAreSorted(vols) {
		inds := ArgSort(vols)
		vols = TakeAt(vols, inds)
		energies = TakeAt(energies, inds)
	}
	fit, err := fitPolynomial(vols, energies, order)
	if err != nil {
		return nil, err
	}
	switch fitType {
	case FitPolynomial, "":
		return fit, nil
	case FitMurnaghan:
		return fitForm(fit, FitMurnaghan, murnaghanEnergy)
	case FitBirchMurnaghan:
		return fitForm(fit, FitBirchMurnaghan, birchMurnaghanEnergy)
	}
	return nil, fmt.Errorf("unsupported fit type %q", fitType)
}

// fitPolynomial fits E(V) with a polynomial and locates the minimum
// inside the sampled volume range
func fitPolynomial(vols, energies []float64, order int) (*EOSFit, error) {
	coeffs, err := PolyFit(vols, energies, order)
	if err != nil {
		return nil, err
	}
	der := PolyDer(coeffs)
	roots, err := PolyRoots(der)
	if err != nil {
		return nil, err
	}
	der2 := PolyDer(der)
	var (
		v0    float64
		found bool
	)
	lo, hi := vols[0], vols[len(vols)-1]
	for _, r := range roots {
		if math.Abs(imag(r)) > 1e-10 {
			continue
		}
		v := real(r)
		if v < lo || v > hi || PolyVal(der2, v) <= 0 {
			continue
		}
		if !found || PolyVal(coeffs, v) < PolyVal(coeffs, v0) {
			v0 = v
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("no minimum in the sampled volume range "+
			"[%.3f, %.3f]; widen the volume range", lo, hi)
	}
	fit := &EOSFit{
		FitType:  FitPolynomial,
		Order:    order,
		V0:       v0,
		E0:       PolyVal(coeffs, v0),
		B0:       v0 * PolyVal(der2, v0) * EVA3ToGPa,
		Coeffs:   coeffs,
		Volumes:  vols,
		Energies: energies,
	}
	if order >= 3 {
		der3 := PolyDer(der2)
		fit.BPrime = -1 - v0*PolyVal(der3, v0)/PolyVal(der2, v0)
	}
	return fit, nil
}

// fitForm refines a polynomial fit with a closed-form equation of
// state, minimizing the squared residuals with Nelder-Mead
func fitForm(seed *EOSFit, name string,
	form func(v, e0, b0, bp, v0 float64) float64) (*EOSFit, error) {
	vols, energies := seed.Volumes, seed.Energies
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			var sum float64
			for i, v := range vols {
				d := energies[i] - form(v, x[0], x[1], x[2], x[3])
				sum += d * d
			}
			return sum
		},
	}
	x0 := []float64{seed.E0, seed.B0 / EVA3ToGPa, seed.BPrime, seed.V0}
	if x0[2] <= 0 {
		x0[2] = 4
	}
	res, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%s fit: %w", name, err)
	}
	return &EOSFit{
		FitType:  name,
		V0:       res.X[3],
		E0:       res.X[0],
		B0:       res.X[1] * EVA3ToGPa,
		BPrime:   res.X[2],
		Volumes:  vols,
		Energies: energies,
	}, nil
}

// murnaghanEnergy is the Murnaghan equation of state with b0 in
// eV/Å³
func murnaghanEnergy(v, e0, b0, bp, v0 float64) float64 {
	return e0 + b0*v/bp*(math.Pow(v0/v, bp)/(bp-1)+1) - v0*b0/(bp-1)
}

// birchMurnaghanEnergy is the third-order Birch-Murnaghan equation of
// state with b0 in eV/Å³
func birchMurnaghanEnergy(v, e0, b0, bp, v0 float64) float64 {
	eta := math.Pow(v0/v, 2.0/3.0)
	return e0 + 9*b0*v0/16*((eta-1)*(eta-1)*(eta-1)*bp+
		(eta-1)*(eta-1)*(6-4*eta))
}
