package extract

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrAmountOutOfRange is returned when a numeric token does not fit an int64.
var ErrAmountOutOfRange = errors.New("amount out of range")

var leadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseAmount reads the leading decimal number of an amount token. A token that
// carries the slang marker "k" or the "000" left behind by normalization is
// scaled by 1000 when the number is below 1000: "50k" is 50000 and "25 000" is
// 25000, while "50000" stays 50000. A token without digits is 0.
func ParseAmount(raw string) (int64, error) {
	num := leadingNumber.FindString(raw)
	if num == "" {
		return 0, nil
	}
	lower := strings.ToLower(raw)
	scaled := strings.Contains(lower, "k") || strings.Contains(lower, "000")

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrAmountOutOfRange, raw)
		}
		if scaled && n < 1000 {
			n *= 1000
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrAmountOutOfRange, raw)
	}
	if scaled && f < 1000 {
		f *= 1000
	}
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrAmountOutOfRange, raw)
	}
	return int64(f), nil
}

// Amount is the total form of ParseAmount: out-of-range tokens degrade to 0.
func Amount(raw string) int64 {
	n, err := ParseAmount(raw)
	if err != nil {
		return 0
	}
	return n
}
