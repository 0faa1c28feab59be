package interpreter

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aliskhannn/quran-assistant-bot/internal/textmatch"
)

var (
	ErrOperatorNotFound    = errors.New("operator not found")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrOperandNotNumeric   = errors.New("operand not numeric")
	ErrMalformedExpression = errors.New("malformed expression")
)

// OperandError names the operand that is not a plain decimal number.
type OperandError struct {
	Operand string
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("%s: %q", ErrOperandNotNumeric, e.Operand)
}

func (e *OperandError) Unwrap() error { return ErrOperandNotNumeric }

var (
	decimalRe        = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	numericInfixRe   = regexp.MustCompile(`\d+(?:\.\d+)?\s*[+\-*/^×÷]\s*\d+`)
	linearEquationRe = regexp.MustCompile(`([a-zA-Z])\s*([+\-*/])\s*(\d+(?:\.\d+)?)\s*=\s*(-?\d+(?:\.\d+)?)`)
	operatorSpacer   = strings.NewReplacer(
		"+", " + ", "-", " - ", "*", " * ", "/", " / ", "^", " ^ ",
		"×", " * ", "÷", " / ", "(", " ( ", ")", " ) ", "=", " = ",
	)
)

var cueWords = map[string]struct{}{
	"چند": {}, "حل": {}, "جمع": {}, "ضرب": {}, "تقسیم": {}, "تفریق": {},
	"منها": {}, "منهای": {}, "بعلاوه": {}, "اضافه": {}, "حاصل": {},
	"توان": {}, "حساب": {}, "ضربدر": {},
}

var numberWords = map[string]string{
	"یک": "1", "دو": "2", "سه": "3", "چهار": "4", "پنج": "5",
	"شش": "6", "هفت": "7", "هشت": "8", "نه": "9", "ده": "10",
}

var twoWordOperators = map[string]string{
	"به توان":  "^",
	"به اضافه": "+",
	"به علاوه": "+",
	"تقسیم بر": "/",
	"ضرب در":   "*",
}

var operatorWords = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "^": "^",
	"جمع": "+", "بعلاوه": "+", "اضافه": "+",
	"منها": "-", "منهای": "-", "تفریق": "-",
	"ضرب": "*", "ضربدر": "*", "در": "*",
	"تقسیم": "/", "بر": "/",
	"توان": "^",
}

// Arithmetic detects and solves arithmetic word problems.
type Arithmetic struct{}

// Solution is a solved problem ready for rendering.
type Solution struct {
	Expression string
	Value      float64
	Variable   string // set for linear equations
	Step       string
}

// Detect reports whether input looks like an arithmetic problem: a numeric
// infix expression, a single-variable linear equation, or a cue word with at
// least two numeric operands.
func (Arithmetic) Detect(input string) bool {
	folded := textmatch.FoldDigits(input)
	if linearEquationRe.MatchString(folded) || numericInfixRe.MatchString(folded) {
		return true
	}

	fields := arithmeticFields(folded)
	hasCue := false
	operands := 0
	for _, f := range fields {
		if _, ok := cueWords[f]; ok {
			hasCue = true
		}
		if isNumber(f) {
			operands++
		} else if _, ok := numberWords[f]; ok {
			operands++
		}
	}
	return hasCue && operands >= 2
}

// Solve evaluates input. Linear equations are solved for their variable;
// everything else is converted to a symbolic expression first.
func (Arithmetic) Solve(input string) (Solution, error) {
	folded := textmatch.FoldDigits(input)

	if m := linearEquationRe.FindStringSubmatch(folded); m != nil {
		return solveLinear(m[1], m[2], m[3], m[4])
	}

	tokens := convertVerbal(arithmeticFields(folded))
	expr := strings.Join(tokens, " ")

	var (
		value float64
		err   error
	)
	if slices.Contains(tokens, "^") || slices.Contains(tokens, "(") || slices.Contains(tokens, ")") {
		value, err = evalExpression(tokens)
	} else {
		value, err = evalTwoPhase(tokens)
	}
	if err != nil {
		return Solution{Expression: expr}, err
	}

	return Solution{Expression: expr, Value: value}, nil
}

// solveLinear inverts "v op a = b" into "v = b inv(op) a".
func solveLinear(variable, op, aStr, bStr string) (Solution, error) {
	a, err := strconv.ParseFloat(aStr, 64)
	if err != nil {
		return Solution{}, ErrOperandNotNumeric
	}
	b, err := strconv.ParseFloat(bStr, 64)
	if err != nil {
		return Solution{}, ErrOperandNotNumeric
	}

	expr := fmt.Sprintf("%s %s %s = %s", variable, op, aStr, bStr)

	var (
		inverse string
		value   float64
	)
	switch op {
	case "+":
		inverse, value = "-", b-a
	case "-":
		inverse, value = "+", b+a
	case "*":
		if a == 0 {
			return Solution{Expression: expr}, ErrDivisionByZero
		}
		inverse, value = "/", b/a
	case "/":
		if a == 0 {
			return Solution{Expression: expr}, ErrDivisionByZero
		}
		inverse, value = "*", b*a
	default:
		return Solution{Expression: expr}, ErrOperatorNotFound
	}

	return Solution{
		Expression: expr,
		Value:      value,
		Variable:   variable,
		Step:       fmt.Sprintf("%s = %s %s %s = %s", variable, bStr, inverse, aStr, formatNumber(value)),
	}, nil
}

// arithmeticFields splits input into words with operator symbols detached
// and trailing question marks removed.
func arithmeticFields(s string) []string {
	fields := strings.Fields(operatorSpacer.Replace(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "؟?!.,،")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// convertVerbal turns words into a token stream of numbers, operators and
// parentheses. Filler words are dropped. A leading operator word followed
// by "a و b" ("جمع ۲ و ۳") becomes "a op b".
func convertVerbal(fields []string) []string {
	var (
		out        []string
		prefix     string
		negateNext bool
	)

	lastIsOperand := func() bool {
		if len(out) == 0 {
			return false
		}
		last := out[len(out)-1]
		return last == ")" || isOperandToken(last)
	}

	emitOperand := func(n string) {
		if negateNext {
			n = "-" + n
			negateNext = false
		}
		out = append(out, n)
	}

	emitOperator := func(op string, next string) {
		if lastIsOperand() {
			out = append(out, op)
			return
		}
		switch {
		case op == "-" && next == "(":
			out = append(out, "-")
		case op == "-":
			negateNext = !negateNext
		default:
			prefix = op
		}
	}

	for i := 0; i < len(fields); i++ {
		f := fields[i]
		next := ""
		if i+1 < len(fields) {
			next = fields[i+1]
		}

		if op, ok := twoWordOperators[f+" "+next]; ok {
			i++
			next = ""
			if i+1 < len(fields) {
				next = fields[i+1]
			}
			emitOperator(op, next)
			continue
		}

		switch {
		case isOperandToken(f):
			// Malformed operands such as "1,000" are kept so evaluation
			// reports them.
			emitOperand(f)
		case numberWords[f] != "":
			emitOperand(numberWords[f])
		case operatorWords[f] != "":
			emitOperator(operatorWords[f], next)
		case f == "(" || f == ")":
			out = append(out, f)
		case f == "و" && prefix != "":
			out = append(out, prefix)
			prefix = ""
		}
	}

	return out
}

// evalTwoPhase resolves every "*" and "/" left to right, then every "+" and
// "-", splicing each result back into the stream and rescanning from the
// start after every operation.
func evalTwoPhase(tokens []string) (float64, error) {
	tokens = slices.Clone(tokens)
	if !slices.ContainsFunc(tokens, isOperator) {
		return 0, ErrOperatorNotFound
	}

	for _, phase := range [][]string{{"*", "/"}, {"+", "-"}} {
		for {
			i := slices.IndexFunc(tokens, func(t string) bool { return slices.Contains(phase, t) })
			if i < 0 {
				break
			}
			if i == 0 || i == len(tokens)-1 {
				return 0, ErrMalformedExpression
			}

			a, err := parseOperand(tokens[i-1])
			if err != nil {
				return 0, err
			}
			b, err := parseOperand(tokens[i+1])
			if err != nil {
				return 0, err
			}
			r, err := apply(tokens[i], a, b)
			if err != nil {
				return 0, err
			}

			tokens = slices.Replace(tokens, i-1, i+2, strconv.FormatFloat(r, 'f', -1, 64))
		}
	}

	if len(tokens) != 1 {
		return 0, ErrMalformedExpression
	}
	return parseOperand(tokens[0])
}

func apply(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrOperatorNotFound, op)
	}
}

func parseOperand(s string) (float64, error) {
	if !isNumber(s) {
		return 0, &OperandError{Operand: s}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &OperandError{Operand: s}
	}
	return v, nil
}

func isOperator(s string) bool {
	switch s {
	case "+", "-", "*", "/", "^":
		return true
	default:
		return false
	}
}

// isNumber accepts plain decimals only: no exponents, no digit grouping,
// no nan or inf.
func isNumber(s string) bool {
	return decimalRe.MatchString(s)
}

// isOperandToken reports whether s is meant as an operand: it contains an
// ASCII digit or letter.
func isOperandToken(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r < utf8.RuneSelf && (unicode.IsDigit(r) || unicode.IsLetter(r))
	}) >= 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Answer solves input and renders the result, or a labeled error when the
// problem cannot be evaluated.
func (a Arithmetic) Answer(input string) string {
	sol, err := a.Solve(input)
	if err != nil {
		return "خطا در محاسبه: " + describeError(err)
	}

	if sol.Variable != "" {
		return fmt.Sprintf("برای حل معادله %s:\n%s\nپس %s = %s",
			sol.Expression, sol.Step, sol.Variable, formatNumber(sol.Value))
	}
	return fmt.Sprintf("حاصل %s برابر است با %s", sol.Expression, formatNumber(sol.Value))
}

func describeError(err error) string {
	switch {
	case errors.Is(err, ErrDivisionByZero):
		return "تقسیم بر صفر امکان‌پذیر نیست."
	case errors.Is(err, ErrOperatorNotFound):
		return "عملگری در عبارت پیدا نشد."
	case errors.Is(err, ErrOperandNotNumeric):
		var oe *OperandError
		if errors.As(err, &oe) {
			return fmt.Sprintf("«%s» عدد نیست.", oe.Operand)
		}
		return "یکی از عملوندها عدد نیست."
	default:
		return "عبارت قابل محاسبه نیست."
	}
}
