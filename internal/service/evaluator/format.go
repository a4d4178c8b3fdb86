package evaluator

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber 以最短的十进制形式输出数值（120 -> "120"，0.5 -> "0.5"）。
// |v| >= 1e21 或 0 < |v| < 1e-6 时改用指数形式（1e+21，1.5e-7）
func FormatNumber(v float64) string {
	if v == 0 {
		// -0
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimExponent 去掉指数部分的前导零（1.5e-07 -> 1.5e-7）
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	mantissa, sign, digits := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
