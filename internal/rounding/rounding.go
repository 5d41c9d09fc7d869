// Package rounding reconciles money amounts to 2 decimal places so that a set of
// rounded shares always sums exactly to the rounded total.
//
// Calculation elsewhere runs at full float precision. These helpers are used only where
// an exact-sum guarantee is needed: edited tax/tip/fee totals and item decomposition.
package rounding

import "github.com/shopspring/decimal"

// Places is the number of decimal places every reconciled amount carries.
const Places = 2

// Round2 rounds x to 2 decimals, half away from zero.
// The value is rounded as written (1.005 -> 1.01), not as its binary approximation.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(Places).InexactFloat64()
}

// Sum adds values in decimal and rounds the result to 2 decimals.
func Sum(values []float64) float64 {
	return sum(values).Round(Places).InexactFloat64()
}

// Distribute splits total into count shares rounded to 2 decimals.
// The rounding residual is added to the last share, so the shares sum to Round2(total).
func Distribute(total float64, count int) []float64 {
	if count <= 0 {
		return []float64{}
	}
	if count == 1 {
		return []float64{Round2(total)}
	}

	amounts := make([]float64, count)
	base := total / float64(count)
	for i := range amounts {
		amounts[i] = base
	}
	return reconcile(amounts, total)
}

// RoundToMatch rounds every amount to 2 decimals and pushes the residual against
// targetTotal onto the last element.
// A single element simply becomes Round2(targetTotal).
func RoundToMatch(amounts []float64, targetTotal float64) []float64 {
	if len(amounts) == 0 {
		return []float64{}
	}
	if len(amounts) == 1 {
		return []float64{Round2(targetTotal)}
	}
	return reconcile(amounts, targetTotal)
}

// Scale rescales amounts proportionally so that they sum to target, then reconciles them
// with RoundToMatch. When the existing amounts sum to zero the target is distributed evenly.
func Scale(amounts []float64, target float64) []float64 {
	if len(amounts) == 0 {
		return []float64{}
	}
	current := sum(amounts)
	if current.IsZero() {
		return Distribute(target, len(amounts))
	}

	factor := decimal.NewFromFloat(target).Div(current)
	scaled := make([]float64, len(amounts))
	for i, a := range amounts {
		scaled[i] = decimal.NewFromFloat(a).Mul(factor).InexactFloat64()
	}
	return RoundToMatch(scaled, target)
}

func reconcile(amounts []float64, target float64) []float64 {
	rounded := make([]decimal.Decimal, len(amounts))
	for i, a := range amounts {
		rounded[i] = decimal.NewFromFloat(a).Round(Places)
	}

	total := decimal.Sum(rounded[0], rounded[1:]...)
	diff := decimal.NewFromFloat(target).Round(Places).Sub(total)
	last := len(rounded) - 1
	rounded[last] = rounded[last].Add(diff).Round(Places)

	out := make([]float64, len(rounded))
	for i, d := range rounded {
		out[i] = d.InexactFloat64()
	}
	return out
}

func sum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
