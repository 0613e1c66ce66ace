// Package predict defines the prediction capability the section view
// consumes. The engine never inspects what kind of model it is talking to:
// anything that can map a batch of covariate rows to point predictions
// satisfies Predictor, and optional interval/probability support is
// discovered through the narrower interfaces.
package predict

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// Predictor maps a table of covariate rows to one point prediction per
// row. Implementations must tolerate batches of any size.
type Predictor interface {
	Predict(t *frame.Table) ([]float64, error)
}

// IntervalPredictor additionally produces lower/upper bounds per row.
type IntervalPredictor interface {
	Predictor
	PredictInterval(t *frame.Table) (lower, upper []float64, err error)
}

// ProbPredictor produces per-class probabilities for classification
// models.
type ProbPredictor interface {
	Classes() []string
	PredictProbs(t *frame.Table) ([][]float64, error)
}

// Linear is a least-squares linear model over numeric predictors. It
// exists so demos and tests have a real Predictor without dragging a
// modelling framework into the engine.
type Linear struct {
	Intercept float64
	Coef      map[string]float64
	preds     []string
}

// ErrNoPredictors is returned when FitLinear finds nothing to fit on.
var ErrNoPredictors = errors.New("predict: no numeric predictor columns")

// FitLinear fits response ~ predictors by ordinary least squares.
func FitLinear(t *frame.Table, response string, predictors []string) (*Linear, error) {
	yc, ok := t.Column(response)
	if !ok || yc.Kind != frame.Numeric {
		return nil, fmt.Errorf("predict: response %q missing or not numeric", response)
	}
	var cols []frame.Column
	for _, name := range predictors {
		c, ok := t.Column(name)
		if ok && c.Kind == frame.Numeric {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, ErrNoPredictors
	}
	n := t.NumRows()
	p := len(cols)
	x := mat.NewDense(n, p+1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, c := range cols {
			x.Set(i, j+1, c.Floats[i])
		}
		y.SetVec(i, yc.Floats[i])
	}

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewVecDense(p+1, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("predict: least squares solve: %w", err)
	}

	m := &Linear{Intercept: beta.AtVec(0), Coef: make(map[string]float64, p)}
	for j, c := range cols {
		m.Coef[c.Name] = beta.AtVec(j + 1)
		m.preds = append(m.preds, c.Name)
	}
	return m, nil
}

// Predict implements Predictor.
func (m *Linear) Predict(t *frame.Table) ([]float64, error) {
	out := make([]float64, t.NumRows())
	for _, name := range m.preds {
		c, ok := t.Column(name)
		if !ok || c.Kind != frame.Numeric {
			return nil, fmt.Errorf("predict: covariate table lacks numeric column %q", name)
		}
		coef := m.Coef[name]
		for i := range out {
			out[i] += coef * c.Floats[i]
		}
	}
	for i := range out {
		out[i] += m.Intercept
	}
	return out, nil
}
