// Package forecast predicts the next daily close of a price series with a
// deterministic-process regression: constant, linear trend and annual
// Fourier harmonics fitted by ordinary least squares.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"StockAssistant/internal/model"
)

var (
	// ErrInsufficientHistory means there are not more rows than regressors.
	ErrInsufficientHistory = errors.New("insufficient price history for forecast")
	// ErrIrregularIndex means the series is not one bar per calendar day.
	ErrIrregularIndex = errors.New("series is not a regular daily index")
	// ErrFit means the least squares solve failed.
	ErrFit = errors.New("regression fit failed")
)

// FitError carries the solver failure behind ErrFit.
type FitError struct {
	Rows, Cols int
	Cause      error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("regression fit failed (%dx%d design): %v", e.Rows, e.Cols, e.Cause)
}

func (e *FitError) Unwrap() []error { return []error{ErrFit, e.Cause} }

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

// rankTol is the relative cutoff below which a singular value or R diagonal
// entry counts as zero for an n x p design.
func rankTol(n, p int) float64 {
	return epsilon * float64(max(n, p))
}

// Point is one dated value.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Result is the outcome of one forecast.
type Result struct {
	Fitted        []Point  `json:"fitted,omitempty"`
	Next          Point    `json:"next"`
	LastActual    float64  `json:"last_actual"`
	PercentChange float64  `json:"percent_change"`
	RMSE          float64  `json:"rmse"`
	Clamped       bool     `json:"clamped"`
	Cap           float64  `json:"cap"`
	Terms         []string `json:"terms"`
}

// Forecaster fits the deterministic-process model.
type Forecaster struct {
	FourierOrder   int
	WeeklySeasonal bool
	AutoRejection  bool
}

// New returns a Forecaster with the given Fourier order and auto-rejection
// clamping enabled.
func New(fourierOrder int) *Forecaster {
	return &Forecaster{FourierOrder: fourierOrder, AutoRejection: true}
}

// Forecast fits the model on bars and extrapolates one day ahead. bars must
// be sorted with exactly one bar per calendar day.
func (f *Forecaster) Forecast(bars []model.OHLCV) (*Result, error) {
	if f.FourierOrder < 0 {
		return nil, fmt.Errorf("fourier order must be non-negative, got %d", f.FourierOrder)
	}
	tm := terms{fourierOrder: f.FourierOrder, weekly: f.WeeklySeasonal}
	n, p := len(bars), tm.width()
	if n <= p {
		return nil, fmt.Errorf("%w: %d rows for %d regressors", ErrInsufficientHistory, n, p)
	}
	for i := 1; i < n; i++ {
		if !bars[i].Time.Equal(bars[i-1].Time.AddDate(0, 0, 1)) {
			return nil, fmt.Errorf("%w: %s follows %s", ErrIrregularIndex,
				bars[i].Time.Format(time.DateOnly), bars[i-1].Time.Format(time.DateOnly))
		}
	}

	x := mat.NewDense(n, p, nil)
	row := make([]float64, p)
	for i, b := range bars {
		tm.row(row, i, b.Time)
		x.SetRow(i, row)
	}
	closes := model.Closes(bars)
	y := mat.NewVecDense(n, closes)

	keep := independentColumns(x)
	if len(keep) == 0 {
		return nil, &FitError{Rows: n, Cols: p, Cause: errors.New("design matrix has rank zero")}
	}
	xk := selectColumns(x, keep)

	// Minimum-norm least squares over the numerically nonzero singular
	// values, so an ill-conditioned design still fits.
	var svd mat.SVD
	if !svd.Factorize(xk, mat.SVDThin) {
		return nil, &FitError{Rows: n, Cols: len(keep), Cause: errors.New("SVD did not converge")}
	}
	rank := svd.Rank(rankTol(n, len(keep)))
	if rank == 0 {
		return nil, &FitError{Rows: n, Cols: len(keep), Cause: errors.New("design matrix has rank zero")}
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, y, rank)

	var fittedVec mat.VecDense
	fittedVec.MulVec(xk, &beta)
	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = fittedVec.AtVec(i)
	}

	nextDate := bars[n-1].Time.AddDate(0, 0, 1)
	tm.row(row, n, nextDate)
	next := 0.0
	for j, c := range keep {
		next += row[c] * beta.AtVec(j)
	}
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return nil, &FitError{Rows: n, Cols: len(keep), Cause: errors.New("non-finite forecast")}
	}

	last := closes[n-1]
	if !(last > 0) {
		return nil, &FitError{Rows: n, Cols: len(keep), Cause: fmt.Errorf("last close %v is not positive", last)}
	}
	res := &Result{
		Fitted:        make([]Point, n),
		Next:          Point{Date: nextDate, Value: next},
		LastActual:    last,
		PercentChange: PercentChange(last, next),
		RMSE:          RMSE(closes, fitted),
		Cap:           Cap(last),
	}
	for i, b := range bars {
		res.Fitted[i] = Point{Date: b.Time, Value: fitted[i]}
	}
	names := tm.names()
	for _, c := range keep {
		res.Terms = append(res.Terms, names[c])
	}

	if f.AutoRejection {
		res.Next.Value, res.PercentChange, res.Clamped = Clamp(last, res.Next.Value, res.PercentChange)
	}
	return res, nil
}

// RMSE returns the root-mean-squared error between actual and fitted.
func RMSE(actual, fitted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return floats.Distance(actual, fitted, 2) / math.Sqrt(float64(len(actual)))
}

// PercentChange returns the move from last to forecast in percent.
func PercentChange(last, forecast float64) float64 {
	return forecast*100/last - 100
}

// independentColumns returns the indices of columns that are not linear
// combinations of earlier columns, judged by the R factor of a QR
// decomposition against the largest R diagonal entry.
func independentColumns(x *mat.Dense) []int {
	n, p := x.Dims()
	var qr mat.QR
	qr.Factorize(x)
	var r mat.Dense
	qr.RTo(&r)

	diag := make([]float64, p)
	largest := 0.0
	for j := range diag {
		diag[j] = math.Abs(r.At(j, j))
		largest = math.Max(largest, diag[j])
	}
	tol := largest * rankTol(n, p)

	keep := make([]int, 0, p)
	for j, d := range diag {
		if d > tol {
			keep = append(keep, j)
		}
	}
	return keep
}

func selectColumns(x *mat.Dense, cols []int) *mat.Dense {
	n, p := x.Dims()
	if len(cols) == p {
		return x
	}
	out := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		for i := 0; i < n; i++ {
			out.Set(i, j, x.At(i, c))
		}
	}
	return out
}
