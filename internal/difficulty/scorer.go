// Package difficulty computes synthetic difficulty scores for addition exercises.
package difficulty

import (
	"strconv"
	"strings"

	"github.com/okatens/addstat/internal/model"
)

// TotalDigits counts the decimal digits of both operands.
func TotalDigits(a, b int) int {
	return len(strconv.Itoa(a)) + len(strconv.Itoa(b))
}

// ZeroCount counts zero digits across both operands, negated. Zeros make an
// exercise easier, so the count is stored negative and a positive weight
// still lowers the score.
func ZeroCount(a, b int) int {
	n := strings.Count(strconv.Itoa(a), "0") + strings.Count(strconv.Itoa(b), "0")
	return -n
}

// Carryovers simulates grade-school addition and counts carry operations.
// The final overflow carry, if any, is not counted.
func Carryovers(a, b int) int {
	carries := 0
	carry := 0
	for a > 0 || b > 0 {
		sum := a%10 + b%10 + carry
		if sum >= 10 {
			carries++
			carry = 1
		} else {
			carry = 0
		}
		a /= 10
		b /= 10
	}
	return carries
}

// Score combines the three features into a raw difficulty score.
func Score(a, b int, w model.Weights) float64 {
	return w.Digits*float64(TotalDigits(a, b)) +
		w.Carryovers*float64(Carryovers(a, b)) +
		w.Zeros*float64(ZeroCount(a, b))
}
