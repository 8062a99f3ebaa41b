package risk

import (
	"fmt"
	"math"
	"sort"
)

// RobustScaler centers each column on its median and scales by the
// interquartile range. NaN cells are ignored while fitting.
type RobustScaler struct {
	Center []float64 `json:"center" cbor:"center"`
	Scale  []float64 `json:"scale" cbor:"scale"`
}

// MinMaxScaler maps each column onto [0,1] using the fitted column range.
// NaN cells are ignored while fitting.
type MinMaxScaler struct {
	Min   []float64 `json:"min" cbor:"min"`
	Range []float64 `json:"range" cbor:"range"`
}

// Scalers is the cached pair fitted over the calibration matrix.
type Scalers struct {
	Robust RobustScaler `json:"robust" cbor:"robust"`
	MinMax MinMaxScaler `json:"minmax" cbor:"minmax"`
}

// FitRobust fits a RobustScaler column by column. A column with zero IQR, or
// with no finite values, gets a scale of 1.
func FitRobust(rows [][]float64) (RobustScaler, error) {
	width, err := matrixWidth(rows)
	if err != nil {
		return RobustScaler{}, err
	}
	s := RobustScaler{Center: make([]float64, width), Scale: make([]float64, width)}
	for j := range width {
		col := finiteColumn(rows, j)
		if len(col) == 0 {
			s.Scale[j] = 1
			continue
		}
		s.Center[j] = percentile(col, 50)
		iqr := percentile(col, 75) - percentile(col, 25)
		if iqr == 0 {
			iqr = 1
		}
		s.Scale[j] = iqr
	}
	return s, nil
}

// Transform returns (x - center) / scale for each element.
func (s RobustScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j >= len(s.Center) {
			out[j] = v
			continue
		}
		out[j] = (v - s.Center[j]) / s.Scale[j]
	}
	return out
}

// FitMinMax fits a MinMaxScaler column by column. A constant column gets a
// range of 1.
func FitMinMax(rows [][]float64) (MinMaxScaler, error) {
	width, err := matrixWidth(rows)
	if err != nil {
		return MinMaxScaler{}, err
	}
	s := MinMaxScaler{Min: make([]float64, width), Range: make([]float64, width)}
	for j := range width {
		col := finiteColumn(rows, j)
		if len(col) == 0 {
			s.Range[j] = 1
			continue
		}
		lo, hi := col[0], col[0]
		for _, v := range col[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		s.Min[j] = lo
		s.Range[j] = hi - lo
		if s.Range[j] == 0 {
			s.Range[j] = 1
		}
	}
	return s, nil
}

// Transform returns (x - min) / range for each element. The result is not
// clipped.
func (s MinMaxScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		if j >= len(s.Min) {
			out[j] = v
			continue
		}
		out[j] = (v - s.Min[j]) / s.Range[j]
	}
	return out
}

// FitScalers fits the robust scaler on the raw feature matrix, then the
// min-max scaler on the robust-scaled matrix. NaN cells stay NaN through the
// robust step and are skipped by the min-max fit.
func FitScalers(rows [][]float64) (*Scalers, error) {
	robust, err := FitRobust(rows)
	if err != nil {
		return nil, fmt.Errorf("fitting robust scaler: %w", err)
	}
	scaled := make([][]float64, len(rows))
	for i, r := range rows {
		scaled[i] = robust.Transform(r)
	}
	mm, err := FitMinMax(scaled)
	if err != nil {
		return nil, fmt.Errorf("fitting min-max scaler: %w", err)
	}
	return &Scalers{Robust: robust, MinMax: mm}, nil
}

// Width reports the number of features both scalers were fit on, or 0 when
// they disagree.
func (s *Scalers) Width() int {
	n := len(s.Robust.Center)
	if len(s.Robust.Scale) != n || len(s.MinMax.Min) != n || len(s.MinMax.Range) != n {
		return 0
	}
	return n
}

func matrixWidth(rows [][]float64) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyCalibration
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return 0, fmt.Errorf("row %d has %d columns, want %d", i, len(r), width)
		}
	}
	return width, nil
}

func finiteColumn(rows [][]float64, j int) []float64 {
	col := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := r[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			col = append(col, v)
		}
	}
	sort.Float64s(col)
	return col
}

// percentile uses linear interpolation between closest ranks over a sorted,
// non-empty slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*frac
}

// Percentile is the linear-interpolation quantile over values, ignoring NaN.
// It returns NaN when no finite value is present.
func Percentile(values []float64, p float64) float64 {
	col := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			col = append(col, v)
		}
	}
	if len(col) == 0 {
		return math.NaN()
	}
	sort.Float64s(col)
	return percentile(col, p)
}
