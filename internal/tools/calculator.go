package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// evalExpression evaluates a basic arithmetic expression with + - * / %
// and parentheses using two stacks. No identifiers, no function calls.
func evalExpression(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty expression")
	}

	var values []float64
	var ops []rune

	apply := func() error {
		if len(values) < 2 || len(ops) == 0 {
			return fmt.Errorf("malformed expression")
		}
		b := values[len(values)-1]
		a := values[len(values)-2]
		op := ops[len(ops)-1]
		values = values[:len(values)-2]
		ops = ops[:len(ops)-1]

		var res float64
		switch op {
		case '+':
			res = a + b
		case '-':
			res = a - b
		case '*':
			res = a * b
		case '/':
			if b == 0 {
				return fmt.Errorf("division by zero")
			}
			res = a / b
		case '%':
			if b == 0 {
				return fmt.Errorf("division by zero")
			}
			res = math.Mod(a, b)
		case '^':
			res = math.Pow(a, b)
		default:
			return fmt.Errorf("unknown operator %q", op)
		}
		values = append(values, res)
		return nil
	}

	prec := func(op rune) int {
		switch op {
		case '+', '-':
			return 1
		case '*', '/', '%':
			return 2
		case '^':
			return 3
		}
		return 0
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokNumber:
			values = append(values, tok.value)
		case tokLParen:
			ops = append(ops, '(')
		case tokRParen:
			for len(ops) > 0 && ops[len(ops)-1] != '(' {
				if err := apply(); err != nil {
					return 0, err
				}
			}
			if len(ops) == 0 {
				return 0, fmt.Errorf("unbalanced parentheses")
			}
			ops = ops[:len(ops)-1]
		case tokOperator:
			for len(ops) > 0 && ops[len(ops)-1] != '(' && prec(ops[len(ops)-1]) >= prec(tok.op) {
				if err := apply(); err != nil {
					return 0, err
				}
			}
			ops = append(ops, tok.op)
		}
	}

	for len(ops) > 0 {
		if ops[len(ops)-1] == '(' {
			return 0, fmt.Errorf("unbalanced parentheses")
		}
		if err := apply(); err != nil {
			return 0, err
		}
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}

	return values[0], nil
}

const (
	tokNumber = iota
	tokOperator
	tokLParen
	tokRParen
)

type token struct {
	kind  int
	value float64
	op    rune
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(strings.TrimSpace(expr))

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			f, err := strconv.ParseFloat(string(runes[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", string(runes[i:j]))
			}
			tokens = append(tokens, token{kind: tokNumber, value: f})
			i = j
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i++
		case r == '+' || r == '*' || r == '/' || r == '%' || r == '^':
			tokens = append(tokens, token{kind: tokOperator, op: r})
			i++
		case r == '-':
			// Unary minus becomes a -1 multiplication so it binds
			// tighter than addition but keeps -3^2 == -(3^2).
			unary := len(tokens) == 0 ||
				tokens[len(tokens)-1].kind == tokOperator ||
				tokens[len(tokens)-1].kind == tokLParen
			if unary {
				tokens = append(tokens,
					token{kind: tokNumber, value: -1},
					token{kind: tokOperator, op: '*'})
			} else {
				tokens = append(tokens, token{kind: tokOperator, op: '-'})
			}
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}

	return tokens, nil
}
