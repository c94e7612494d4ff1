package forecast

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/quantex-lab/minbar/internal/types"
	"github.com/quantex-lab/minbar/pkg/errors"
)

// Order identifies one seasonal ARIMA configuration
// (p,d,q)(P,D,Q)[period] with or without a constant term.
type Order struct {
	P, D, Q    int
	SP, SD, SQ int
	Period     int
	Constant   bool
}

// NumParams is the number of free coefficients the order implies, excluding
// the innovation variance.
func (o Order) NumParams() int {
	n := o.P + o.Q + o.SP + o.SQ
	if o.Constant {
		n++
	}

	return n
}

// String renders the order in the conventional (p,d,q)(P,D,Q)[m] notation.
func (o Order) String() string {
	s := fmt.Sprintf("(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.Period)
	if o.Constant {
		s += " with constant"
	}

	return s
}

// maxARLag is the deepest autoregressive lag of the expanded operator over
// the differenced series.
func (o Order) maxARLag() int {
	return o.P + o.SP*o.Period
}

// Model is a fitted seasonal ARIMA model. It is a single-use handle: created
// once per fit and consumed by Forecast; no concurrent access.
type Model struct {
	Order    Order
	AR       []float64
	MA       []float64
	SAR      []float64
	SMA      []float64
	Constant float64
	Sigma2   float64
	LogLik   float64
	AIC      float64

	// levels holds the training series at each differencing depth,
	// outermost (undifferenced) first; lags records the lag applied at each
	// step. Needed to integrate forecasts back to the original scale.
	levels [][]float64
	lags   []int
	diffed []float64
	resid  []float64
	phi    []lagCoef
	theta  []lagCoef
}

// lagCoef is one non-zero coefficient of an expanded lag polynomial.
type lagCoef struct {
	lag  int
	coef float64
}

// difference applies (1 - B^lag) once.
func difference(x []float64, lag int) []float64 {
	out := make([]float64, len(x)-lag)
	for i := range out {
		out[i] = x[i+lag] - x[i]
	}

	return out
}

// polyMul multiplies two lag polynomials given as dense coefficient slices
// with index = power of B and element 0 = 1.
func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, ai := range a {
		if ai == 0 {
			continue
		}

		for j, bj := range b {
			out[i+j] += ai * bj
		}
	}

	return out
}

// arOperator builds the dense polynomial (1 - ar(B)) * (1 - sar(B^m)).
func arOperator(ar, sar []float64, period int) []float64 {
	nonSeasonal := make([]float64, len(ar)+1)
	nonSeasonal[0] = 1

	for i, c := range ar {
		nonSeasonal[i+1] = -c
	}

	seasonal := make([]float64, len(sar)*period+1)
	seasonal[0] = 1

	for i, c := range sar {
		seasonal[(i+1)*period] = -c
	}

	return polyMul(nonSeasonal, seasonal)
}

// maOperator builds the dense polynomial (1 + ma(B)) * (1 + sma(B^m)).
func maOperator(ma, sma []float64, period int) []float64 {
	nonSeasonal := make([]float64, len(ma)+1)
	nonSeasonal[0] = 1

	for i, c := range ma {
		nonSeasonal[i+1] = c
	}

	seasonal := make([]float64, len(sma)*period+1)
	seasonal[0] = 1

	for i, c := range sma {
		seasonal[(i+1)*period] = c
	}

	return polyMul(nonSeasonal, seasonal)
}

// sparseLags converts an operator polynomial into recursion coefficients.
// For an AR operator op(B) z_t = e_t the recursion is
// z_t = sum_i (-op_i) z_{t-i} + e_t; sign flips that conversion.
func sparseLags(op []float64, sign float64) []lagCoef {
	coefs := make([]lagCoef, 0, len(op))

	for lag := 1; lag < len(op); lag++ {
		if op[lag] == 0 {
			continue
		}

		coefs = append(coefs, lagCoef{lag: lag, coef: sign * op[lag]})
	}

	return coefs
}

// stable reports whether the linear recursion x_t = sum coefs_i x_{t-i} is
// stable, i.e. all roots of the characteristic polynomial lie strictly
// inside the unit circle. Checked through the eigenvalues of the companion
// matrix. AR stationarity and (with negated signs) MA invertibility both
// reduce to this check.
func stable(coefs []float64) bool {
	p := len(coefs)
	if p == 0 {
		return true
	}

	companion := mat.NewDense(p, p, nil)
	for j, c := range coefs {
		companion.Set(0, j, c)
	}

	for i := 1; i < p; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return false
	}

	const tolerance = 1e-8
	for _, v := range eig.Values(nil) {
		if cmplx.Abs(v) >= 1-tolerance {
			return false
		}
	}

	return true
}

// negate returns the elementwise negation, used to feed MA coefficients
// through the stability check.
func negate(coefs []float64) []float64 {
	out := make([]float64, len(coefs))
	for i, c := range coefs {
		out[i] = -c
	}

	return out
}

// splitParams unpacks the flat optimizer vector into coefficient groups.
func splitParams(x []float64, order Order) (ar, ma, sar, sma []float64, constant float64) {
	pos := 0
	ar = x[pos : pos+order.P]
	pos += order.P
	ma = x[pos : pos+order.Q]
	pos += order.Q
	sar = x[pos : pos+order.SP]
	pos += order.SP
	sma = x[pos : pos+order.SQ]
	pos += order.SQ

	if order.Constant {
		constant = x[pos]
	}

	return ar, ma, sar, sma, constant
}

// css computes the conditional sum of squares of the recursion residuals
// over z. Residuals before the deepest AR lag are conditioned away;
// pre-sample shocks are zero.
func css(z []float64, phi, theta []lagCoef, constant float64, start int) (float64, []float64) {
	resid := make([]float64, len(z))

	var sum float64

	for t := start; t < len(z); t++ {
		pred := constant

		for _, c := range phi {
			pred += c.coef * z[t-c.lag]
		}

		for _, c := range theta {
			if t-c.lag >= start {
				pred += c.coef * resid[t-c.lag]
			}
		}

		e := z[t] - pred
		resid[t] = e
		sum += e * e
	}

	return sum, resid
}

// fitOrder fits one candidate order to the differenced series by minimizing
// the conditional sum of squares with Nelder-Mead. Candidates whose AR or MA
// polynomials are not stationary/invertible are rejected with an infinite
// objective so the search never selects them.
func fitOrder(levels [][]float64, lags []int, order Order) (*Model, error) {
	diffed := levels[len(levels)-1]
	start := order.maxARLag()
	numParams := order.NumParams()
	effective := len(diffed) - start

	if effective < numParams+10 {
		return nil, errors.NewInsufficientDataErrorf(start+numParams+10, len(diffed), "forecast",
			"order %+v needs at least %d observations after differencing, got %d",
			order, start+numParams+10, len(diffed))
	}

	objective := func(x []float64) float64 {
		ar, ma, sar, sma, constant := splitParams(x, order)

		if !stable(ar) || !stable(sar) || !stable(negate(ma)) || !stable(negate(sma)) {
			return math.Inf(1)
		}

		phi := sparseLags(arOperator(ar, sar, order.Period), -1)
		theta := sparseLags(maOperator(ma, sma, order.Period), 1)
		sum, _ := css(diffed, phi, theta, constant, start)

		return sum
	}

	best := make([]float64, numParams)
	for i := range best {
		best[i] = 0.1
	}

	if order.Constant {
		best[numParams-1] = stat.Mean(diffed, nil)
	}

	if numParams > 0 {
		problem := optimize.Problem{Func: objective}

		result, err := optimize.Minimize(problem, best, nil, &optimize.NelderMead{})
		if err != nil && result == nil {
			return nil, errors.Wrapf(errors.ErrCodeFitFailed, err, "CSS minimization failed for order %+v", order)
		}

		if math.IsInf(result.F, 1) || math.IsNaN(result.F) {
			return nil, errors.Newf(errors.ErrCodeFitFailed,
				"no stationary and invertible fit for order %+v", order)
		}

		best = result.X
	}

	ar, ma, sar, sma, constant := splitParams(best, order)
	phi := sparseLags(arOperator(ar, sar, order.Period), -1)
	theta := sparseLags(maOperator(ma, sma, order.Period), 1)
	sum, resid := css(diffed, phi, theta, constant, start)

	sigma2 := sum / float64(effective)
	if sigma2 <= 0 {
		// perfectly deterministic series; keep the likelihood finite
		sigma2 = 1e-12
	}

	logLik := -0.5 * float64(effective) * (math.Log(2*math.Pi*sigma2) + 1)
	aic := -2*logLik + 2*float64(numParams+1)

	return &Model{
		Order:    order,
		AR:       append([]float64{}, ar...),
		MA:       append([]float64{}, ma...),
		SAR:      append([]float64{}, sar...),
		SMA:      append([]float64{}, sma...),
		Constant: constant,
		Sigma2:   sigma2,
		LogLik:   logLik,
		AIC:      aic,
		levels:   levels,
		lags:     lags,
		diffed:   diffed,
		resid:    resid,
		phi:      phi,
		theta:    theta,
	}, nil
}

// Forecast produces horizon sequential point forecasts continuing from the
// end of the training series, with 95% prediction intervals from the psi
// weights of the full (differencing included) operator.
func (m *Model) Forecast(horizon int) (types.ForecastResult, error) {
	if horizon <= 0 {
		return types.ForecastResult{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"forecast horizon must be positive, got %d", horizon)
	}

	n := len(m.diffed)
	start := m.Order.maxARLag()

	// forecast the differenced series with zero future shocks
	zhat := make([]float64, horizon)

	zval := func(t int) float64 {
		if t < n {
			return m.diffed[t]
		}

		return zhat[t-n]
	}

	eval := func(t int) float64 {
		if t >= start && t < n {
			return m.resid[t]
		}

		return 0
	}

	for h := 0; h < horizon; h++ {
		t := n + h
		pred := m.Constant

		for _, c := range m.phi {
			pred += c.coef * zval(t-c.lag)
		}

		for _, c := range m.theta {
			pred += c.coef * eval(t-c.lag)
		}

		zhat[h] = pred
	}

	// integrate back through the differencing chain
	points := zhat

	for step := len(m.lags) - 1; step >= 0; step-- {
		base := m.levels[step]
		lag := m.lags[step]

		extended := make([]float64, len(base), len(base)+horizon)
		copy(extended, base)

		integrated := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			v := points[h] + extended[len(extended)-lag]
			integrated[h] = v
			extended = append(extended, v)
		}

		points = integrated
	}

	variances := m.forecastVariances(horizon)

	const z975 = 1.959963984540054

	result := types.ForecastResult{Points: make([]types.ForecastPoint, horizon)}
	for h := 0; h < horizon; h++ {
		half := z975 * math.Sqrt(variances[h])
		result.Points[h] = types.ForecastPoint{
			Point: points[h],
			Lower: points[h] - half,
			Upper: points[h] + half,
		}
	}

	return result, nil
}

// forecastVariances accumulates psi weights of the generalized AR operator
// (stationary part convolved with the differencing polynomials) to the
// requested horizon.
func (m *Model) forecastVariances(horizon int) []float64 {
	op := arOperator(m.AR, m.SAR, m.Order.Period)

	for i := 0; i < m.Order.D; i++ {
		op = polyMul(op, []float64{1, -1})
	}

	seasonalDiff := make([]float64, m.Order.Period+1)
	seasonalDiff[0] = 1
	seasonalDiff[m.Order.Period] = -1

	for i := 0; i < m.Order.SD; i++ {
		op = polyMul(op, seasonalDiff)
	}

	arLags := sparseLags(op, -1)
	maOp := maOperator(m.MA, m.SMA, m.Order.Period)

	psi := make([]float64, horizon)
	variances := make([]float64, horizon)

	var accumulated float64

	for j := 0; j < horizon; j++ {
		if j == 0 {
			psi[j] = 1
		} else {
			var v float64
			if j < len(maOp) {
				v = maOp[j]
			}

			for _, c := range arLags {
				if j-c.lag >= 0 {
					v += c.coef * psi[j-c.lag]
				}
			}

			psi[j] = v
		}

		accumulated += psi[j] * psi[j]
		variances[j] = m.Sigma2 * accumulated
	}

	return variances
}
