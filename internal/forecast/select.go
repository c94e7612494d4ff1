package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/quantex-lab/minbar/pkg/errors"
)

// Search bounds for the stepwise order search.
const (
	maxP         = 5
	maxQ         = 5
	maxSeasonalP = 2
	maxSeasonalQ = 2
	maxD         = 2
)

// minTrainingSize is the smallest series the automatic fit accepts before
// any candidate is even tried.
const minTrainingSize = 10

// FitAuto selects differencing orders, runs a stepwise search over
// (p,q)(P,Q) and the constant term minimizing AIC, and returns the fitted
// model of the winning order. Seasonal orders are admitted only when the
// training series spans at least two full seasonal periods; shorter series
// are searched non-seasonally instead of failing.
func FitAuto(train []float64, period int) (*Model, error) {
	if len(train) < minTrainingSize {
		return nil, errors.NewInsufficientDataErrorf(minTrainingSize, len(train), "forecast",
			"automatic order selection requires at least %d observations, got %d",
			minTrainingSize, len(train))
	}

	seasonal := period >= 2 && len(train) >= 2*period

	d := chooseD(train)

	sd := 0
	if seasonal {
		sd = chooseSeasonalD(train, period)
	}

	// build the differencing chain once; every candidate shares it
	levels := [][]float64{train}
	lags := []int{}

	current := train
	for i := 0; i < d; i++ {
		current = difference(current, 1)
		levels = append(levels, current)
		lags = append(lags, 1)
	}

	for i := 0; i < sd; i++ {
		current = difference(current, period)
		levels = append(levels, current)
		lags = append(lags, period)
	}

	return stepwiseSearch(levels, lags, d, sd, period, seasonal)
}

// chooseD picks the regular differencing order by the variance-minimization
// heuristic: difference while the sample standard deviation keeps dropping.
func chooseD(x []float64) int {
	d := 0
	current := x

	for d < maxD && len(current) > 2 {
		next := difference(current, 1)
		if stat.StdDev(next, nil) >= stat.StdDev(current, nil) {
			break
		}

		current = next
		d++
	}

	return d
}

// chooseSeasonalD applies the same heuristic at the seasonal lag, with a
// stricter threshold so a marginal drop does not trigger a whole seasonal
// difference.
func chooseSeasonalD(x []float64, period int) int {
	if len(x) < 3*period {
		return 0
	}

	next := difference(x, period)
	if stat.StdDev(next, nil) < 0.9*stat.StdDev(x, nil) {
		return 1
	}

	return 0
}

// stepwiseSearch walks the order neighborhood Hyndman-Khandakar style:
// evaluate a small start set, then repeatedly move to the best AIC among
// one-step neighbors (p, q, P, Q by one, constant toggled) until no move
// improves.
func stepwiseSearch(levels [][]float64, lags []int, d, sd, period int, seasonal bool) (*Model, error) {
	constant := d+sd == 0

	starts := []Order{
		{P: 2, D: d, Q: 2, SD: sd, Period: period, Constant: constant},
		{P: 0, D: d, Q: 0, SD: sd, Period: period, Constant: constant},
		{P: 1, D: d, Q: 0, SD: sd, Period: period, Constant: constant},
		{P: 0, D: d, Q: 1, SD: sd, Period: period, Constant: constant},
	}

	if seasonal {
		starts[0].SP, starts[0].SQ = 1, 1
		starts[2].SP = 1
		starts[3].SQ = 1
	}

	tried := make(map[string]*Model)

	var (
		best    *Model
		lastErr error
	)

	evaluate := func(order Order) {
		key := orderKey(order)
		if _, seen := tried[key]; seen {
			return
		}

		model, err := fitOrder(levels, lags, order)
		tried[key] = model

		if err != nil {
			lastErr = err
			return
		}

		if best == nil || model.AIC < best.AIC {
			best = model
		}
	}

	for _, order := range starts {
		evaluate(order)
	}

	for {
		if best == nil {
			break
		}

		before := best

		for _, neighbor := range neighbors(best.Order, seasonal) {
			evaluate(neighbor)
		}

		if best == before {
			break
		}
	}

	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}

		return nil, errors.New(errors.ErrCodeFitFailed, "no candidate order produced a valid fit")
	}

	return best, nil
}

// neighbors enumerates the admissible one-step moves from an order.
func neighbors(order Order, seasonal bool) []Order {
	moves := make([]Order, 0, 9)

	add := func(o Order) {
		if o.P < 0 || o.P > maxP || o.Q < 0 || o.Q > maxQ {
			return
		}

		if o.SP < 0 || o.SP > maxSeasonalP || o.SQ < 0 || o.SQ > maxSeasonalQ {
			return
		}

		moves = append(moves, o)
	}

	for _, dp := range []int{-1, 1} {
		o := order
		o.P += dp
		add(o)

		o = order
		o.Q += dp
		add(o)

		if seasonal {
			o = order
			o.SP += dp
			add(o)

			o = order
			o.SQ += dp
			add(o)
		}
	}

	toggled := order
	toggled.Constant = !order.Constant
	add(toggled)

	return moves
}

func orderKey(o Order) string {
	return o.String()
}
