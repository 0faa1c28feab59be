package interpreter

import "math"

// parser is a recursive-descent evaluator over + - * / ^ and parentheses.
//
//	expr  = term { ("+" | "-") term }
//	term  = power { ("*" | "/") power }
//	power = unary [ "^" power ]
//	unary = "-" unary | primary
//	primary = number | "(" expr ")"
type parser struct {
	tokens []string
	pos    int
}

func evalExpression(tokens []string) (float64, error) {
	hasOperator := false
	for _, t := range tokens {
		if isOperator(t) {
			hasOperator = true
			break
		}
	}
	if !hasOperator {
		return 0, ErrOperatorNotFound
	}

	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, ErrMalformedExpression
	}
	return v, nil
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if left, err = apply(op, left, right); err != nil {
			return 0, err
		}
	}
	return left, nil
}

func (p *parser) term() (float64, error) {
	left, err := p.power()
	if err != nil {
		return 0, err
	}
	for p.peek() == "*" || p.peek() == "/" {
		op := p.next()
		right, err := p.power()
		if err != nil {
			return 0, err
		}
		if left, err = apply(op, left, right); err != nil {
			return 0, err
		}
	}
	return left, nil
}

func (p *parser) power() (float64, error) {
	base, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.peek() != "^" {
		return base, nil
	}
	p.next()
	exp, err := p.power()
	if err != nil {
		return 0, err
	}
	v := math.Pow(base, exp)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrMalformedExpression
	}
	return v, nil
}

func (p *parser) unary() (float64, error) {
	if p.peek() == "-" {
		p.next()
		v, err := p.unary()
		return -v, err
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	t := p.next()
	switch {
	case t == "":
		return 0, ErrMalformedExpression
	case t == "(":
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.next() != ")" {
			return 0, ErrMalformedExpression
		}
		return v, nil
	case t == ")" || isOperator(t):
		return 0, ErrMalformedExpression
	default:
		return parseOperand(t)
	}
}
