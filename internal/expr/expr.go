// Package expr evaluates the small arithmetic expressions accepted by numeric
// job file fields, such as "1/2" or "10^-3".
//
// Input is restricted to digits, '.', the exponent markers 'e' and 'E', the
// operators + - * / ^ ** and parentheses. The restricted input is rewritten
// into a canonical form (every literal as a float, '^' as '**') and then
// compiled and run by expr-lang with an empty environment.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// allowed is the full character set accepted by Eval.
const allowed = "eE.^()-+*/0123456789 \t"

// Errors returned by Eval. They are wrapped with positional detail; use
// errors.Is to test for them.
var (
	ErrEmpty            = errors.New("empty expression")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrMalformed        = errors.New("malformed expression")
	ErrNotFinite        = errors.New("expression result is not a finite number")
)

// Eval evaluates s and returns its value.
func Eval(s string) (float64, error) {
	canonical, err := canonicalize(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}

	// expr-lang errors quote the canonical source; report the input instead.
	program, err := expr.Compile(canonical, expr.Env(map[string]any{}))
	if err != nil {
		return 0, fmt.Errorf("%w; %q", ErrMalformed, s)
	}

	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("%w; %q", ErrMalformed, s)
	}

	var v float64
	switch n := out.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	default:
		return 0, fmt.Errorf("%w; result has type %T", ErrMalformed, out)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// canonicalize validates the character set and number literals of s and
// returns the expression as expr-lang source.
func canonicalize(s string) (string, error) {
	if s == "" {
		return "", ErrEmpty
	}

	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return "", fmt.Errorf("%w %q at position %d", ErrInvalidCharacter, rune(s[i]), i+1)
		}
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			b.WriteByte(' ')
			i++
		case isDigit(c) || c == '.':
			lit, n, err := scanNumber(s[i:])
			if err != nil {
				return "", fmt.Errorf("%w at position %d", err, i+1)
			}
			b.WriteString(lit)
			i += n
		case c == 'e' || c == 'E':
			return "", fmt.Errorf("%w; exponent marker without mantissa at position %d", ErrMalformed, i+1)
		case c == '^':
			b.WriteString(" ** ")
			i++
		case c == '*':
			if i+1 < len(s) && s[i+1] == '*' {
				b.WriteString(" ** ")
				i += 2
				continue
			}
			b.WriteString(" * ")
			i++
		case c == '/':
			if i+1 < len(s) && s[i+1] == '/' {
				return "", fmt.Errorf("%w; floor division is not supported at position %d", ErrMalformed, i+1)
			}
			b.WriteString(" / ")
			i++
		default:
			// + - ( )
			b.WriteByte(c)
			i++
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmpty
	}
	return out, nil
}

// scanNumber reads one decimal literal from the start of s. It returns the
// literal formatted as a float and the number of bytes consumed.
func scanNumber(s string) (string, int, error) {
	i := 0
	mantissaDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissaDigits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissaDigits++
		}
	}
	if mantissaDigits == 0 {
		return "", 0, fmt.Errorf("%w; '.' without digits", ErrMalformed)
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			return "", 0, fmt.Errorf("%w; exponent without digits", ErrMalformed)
		}
		i = j
	}

	if i < len(s) && s[i] == '.' {
		return "", 0, fmt.Errorf("%w; unexpected '.'", ErrMalformed)
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return "", 0, fmt.Errorf("%w; %v", ErrMalformed, err)
		}
		// Underflow rounds to zero; overflow is rejected.
		if math.IsInf(v, 0) {
			return "", 0, ErrNotFinite
		}
	}

	lit := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(lit, ".") {
		lit += ".0"
	}
	return lit, i, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
