// Package pricing implements the closed-form Black-Scholes primitives the
// screener needs: option price, vega, signed delta, the risk-neutral
// probability of finishing in the money, and a Newton-Raphson implied
// volatility back-out.
//
// All functions are pure. Time to expiry is expressed in years; clamping
// of very short expiries is performed here so that callers can pass a
// same-day expiry without hitting the T→0 singularity.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

const sqrt2Pi = 2.5066282746310002

// MinExpiryYears is the floor applied to time-to-expiry. A contract that
// expires today is priced as if one day remained.
const MinExpiryYears = 1.0 / 365.0

// ErrInvalidVolatility reports a missing or non-positive volatility input.
// Callers must not substitute a default sigma silently; a delta computed
// from a made-up volatility is worse than no delta at all.
var ErrInvalidVolatility = errors.New("invalid volatility")

// Greeks holds the per-contract model outputs consumed by the metrics
// layer.
type Greeks struct {
	// Delta is the signed first derivative of option price with respect
	// to the underlying: N(d1) for calls, N(d1)-1 for puts. Consumers
	// that filter on delta bands compare against its absolute value.
	Delta float64

	// ITMProb is the risk-neutral probability that the option expires in
	// the money: N(d2) for calls, N(-d2) for puts. Always within [0, 1].
	ITMProb float64
}

// d1d2 computes the standard Black-Scholes decomposition.
// Inputs must already be validated: S > 0, K > 0, sigma > 0, T > 0.
func d1d2(S, K, T, r, sigma float64) (d1, d2 float64) {
	sqT := sigma * math.Sqrt(T)
	d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / sqT
	d2 = d1 - sqT
	return d1, d2
}

// Price calculates the theoretical value of a European option.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// If time to expiry or volatility is zero or negative the intrinsic value
// is returned instead.
func Price(isCall bool, S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		if isCall {
			return math.Max(0, S-K)
		}
		return math.Max(0, K-S)
	}

	d1, d2 := d1d2(S, K, T, r, sigma)
	if isCall {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
}

// Vega calculates the sensitivity of the option price to a change in
// volatility. Identical for calls and puts. Returns 0 when T or sigma is
// non-positive.
func Vega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return 0
	}
	d1, _ := d1d2(S, K, T, r, sigma)
	return S * normPDF(d1) * math.Sqrt(T)
}

// Model evaluates delta and ITM probability for one contract.
//
// T is clamped to MinExpiryYears. Spot and strike must be positive;
// sigma must be strictly positive or ErrInvalidVolatility is returned.
// The returned delta is signed (negative for puts); ITMProb is clamped
// to [0, 1] against rounding at the distribution tails.
func Model(isCall bool, S, K, T, r, sigma float64) (Greeks, error) {
	if sigma <= 0 || math.IsNaN(sigma) {
		return Greeks{}, ErrInvalidVolatility
	}
	if S <= 0 || K <= 0 {
		return Greeks{}, fmt.Errorf("non-positive spot %v or strike %v", S, K)
	}
	if T < MinExpiryYears {
		T = MinExpiryYears
	}

	d1, d2 := d1d2(S, K, T, r, sigma)

	g := Greeks{}
	if isCall {
		g.Delta = normCDF(d1)
		g.ITMProb = normCDF(d2)
	} else {
		g.Delta = normCDF(d1) - 1.0
		g.ITMProb = normCDF(-d2)
	}
	g.ITMProb = math.Max(0, math.Min(1, g.ITMProb))
	return g, nil
}

// ImpliedVol recovers the volatility implied by a market price using
// Newton-Raphson on the Black-Scholes price with vega as the derivative.
//
// Used as the optional fallback when a feed row carries a usable premium
// but no implied volatility. Returns an error when inputs are unusable or
// the iteration fails to converge; the caller treats that the same as a
// missing volatility.
func ImpliedVol(isCall bool, marketPrice, S, K, T, r float64) (float64, error) {
	if T <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}
	if marketPrice <= 0 || S <= 0 || K <= 0 {
		return 0, fmt.Errorf("invalid inputs for implied vol: price=%v spot=%v strike=%v", marketPrice, S, K)
	}

	// Initial guess: 20%
	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		price := Price(isCall, S, K, T, r, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := Vega(S, K, T, r, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}

// normPDF is the standard normal probability density at x.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF is the standard normal cumulative distribution at x, computed
// through the error function. math.Erf is accurate to well under 1e-6
// across the whole domain.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// NormInv computes the inverse of the standard normal cumulative
// distribution function (quantile function) using Wichura's rational
// approximation. Panics if p is not strictly between 0 and 1.
func NormInv(p float64) float64 {
	if p <= 0 || p >= 1 {
		panic("NormInv: p must be in (0,1)")
	}

	// Coefficients
	a := []float64{
		-3.969683028665376e+01,
		2.209460984245205e+02,
		-2.759285104469687e+02,
		1.383577518672690e+02,
		-3.066479806614716e+01,
		2.506628277459239e+00,
	}

	b := []float64{
		-5.447609879822406e+01,
		1.615858368580409e+02,
		-1.556989798598866e+02,
		6.680131188771972e+01,
		-1.328068155288572e+01,
	}

	c := []float64{
		-7.784894002430293e-03,
		-3.223964580411365e-01,
		-2.400758277161838e+00,
		-2.549732539343734e+00,
		4.374664141464968e+00,
		2.938163982698783e+00,
	}

	d := []float64{
		7.784695709041462e-03,
		3.224671290700398e-01,
		2.445134137142996e+00,
		3.754408661907416e+00,
	}

	plow := 0.02425
	phigh := 1 - plow

	var q, r float64

	if p < plow {
		q = math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}

	if p > phigh {
		q = math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}

	q = p - 0.5
	r = q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
}
