// Package evaluator computes arithmetic and array expressions used as
// update values, per row.
package evaluator

import (
	"fmt"
	"strconv"

	"github.com/maximbogatyrev/reindexer/domain"
	"github.com/maximbogatyrev/reindexer/pkg/variant"
)

// Evaluator computes expressions like "price * 0.9 + 1" or
// "tags || [1, 2]" against a row. Scalar arithmetic runs on float64;
// once array concatenation is seen the accumulated array wins over the
// scalar result. Unknown names followed by parentheses are dispatched to
// the function executor.
type Evaluator struct {
	namespace string
	fields    domain.FieldSource
	funcs     domain.FunctionExecutor
}

// NewEvaluator returns an evaluator resolving fields of namespace through
// fields.
func NewEvaluator(namespace string, fields domain.FieldSource, options ...Option) *Evaluator {
	e := &Evaluator{
		namespace: namespace,
		fields:    fields,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Option configures an [Evaluator].
type Option func(*Evaluator)

// WithFunctionExecutor wires the executor unknown call-like names are
// dispatched to.
func WithFunctionExecutor(f domain.FunctionExecutor) Option {
	return func(e *Evaluator) {
		e.funcs = f
	}
}

// Evaluate computes expr against row. forField names the column the value
// is computed for and is handed to function calls.
func (e *Evaluator) Evaluate(expr string, row any, forField string) (variant.Array, error) {
	run := &evalRun{
		ev:       e,
		parser:   newTokenizer(expr),
		row:      row,
		forField: forField,
	}
	scalar, err := run.sum()
	if err != nil {
		return nil, err
	}
	if tok := run.parser.peek(); tok.typ != tokenEnd {
		return nil, run.parser.errorf(tok.pos, fmt.Sprintf("unexpected %q", tok.text))
	}
	if len(run.arrayValues) == 0 {
		return variant.Array{variant.NewDouble(scalar)}, nil
	}
	return run.arrayValues, nil
}

// evalRun is the per-call state: the parser position, the array
// accumulator and whether concatenation switched the run to array mode.
type evalRun struct {
	ev          *Evaluator
	parser      *tokenizer
	row         any
	forField    string
	arrayValues variant.Array
	arrayMode   bool
}

func (r *evalRun) sum() (float64, error) {
	left, err := r.term()
	if err != nil {
		return 0, err
	}
	for {
		tok := r.parser.peek()
		if tok.typ != tokenSymbol || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		r.parser.next()
		right, err := r.term()
		if err != nil {
			return 0, err
		}
		if tok.text == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

func (r *evalRun) term() (float64, error) {
	left, err := r.concat()
	if err != nil {
		return 0, err
	}
	for {
		tok := r.parser.peek()
		if tok.typ != tokenSymbol || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		r.parser.next()
		right, err := r.concat()
		if err != nil {
			return 0, err
		}
		if tok.text == "*" {
			left *= right
		} else {
			if right == 0 {
				return 0, domain.ErrDivisionByZero{}
			}
			left /= right
		}
	}
}

func (r *evalRun) concat() (float64, error) {
	left, err := r.primary()
	if err != nil {
		return 0, err
	}
	for {
		tok := r.parser.peek()
		if tok.typ != tokenSymbol || tok.text != "||" {
			return left, nil
		}
		r.parser.next()
		r.arrayMode = true
		if _, err := r.primary(); err != nil {
			return 0, err
		}
	}
}

func (r *evalRun) primary() (float64, error) {
	tok := r.parser.peek()
	switch {
	case tok.typ == tokenSymbol && tok.text == "(":
		r.parser.next()
		val, err := r.sum()
		if err != nil {
			return 0, err
		}
		if closing := r.parser.next(); closing.typ != tokenSymbol || closing.text != ")" {
			return 0, r.parser.errorf(closing.pos, "')' expected in arithmetical expression")
		}
		return val, nil
	case tok.typ == tokenSymbol && tok.text == "[":
		return 0, r.captureArrayContent()
	case tok.typ == tokenNumber:
		r.parser.next()
		val, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return 0, r.parser.errorf(tok.pos, fmt.Sprintf("malformed number %q", tok.text))
		}
		return val, nil
	case tok.typ == tokenName:
		return r.nameToken(tok)
	}
	return 0, r.parser.errorf(tok.pos, "only integral type non-array fields are supported in arithmetical expressions")
}

// captureArrayContent reads a [v1, v2, ...] literal into the array
// accumulator.
func (r *evalRun) captureArrayContent() error {
	r.parser.next()
	r.arrayMode = true
	for {
		tok := r.parser.next()
		if tok.typ == tokenSymbol && tok.text == "]" {
			if len(r.arrayValues) == 0 {
				return nil
			}
			return r.parser.errorf(tok.pos, "expected field value, but found ']'")
		}
		v, err := literalValue(tok)
		if err != nil {
			return err
		}
		r.arrayValues = append(r.arrayValues, v)
		tok = r.parser.next()
		if tok.typ == tokenSymbol && tok.text == "]" {
			return nil
		}
		if tok.typ != tokenSymbol || tok.text != "," {
			return r.parser.errorf(tok.pos, fmt.Sprintf("expected ']' or ',', but found %q", tok.text))
		}
	}
}

func literalValue(tok token) (variant.Variant, error) {
	switch tok.typ {
	case tokenNumber:
		if i, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
			return variant.NewInt64(i), nil
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return variant.Variant{}, domain.ErrExprSyntax{Msg: fmt.Sprintf("malformed number %q", tok.text), Pos: tok.pos}
		}
		return variant.NewDouble(f), nil
	case tokenString:
		return variant.NewString(tok.text), nil
	case tokenName:
		switch tok.text {
		case "true":
			return variant.NewBool(true), nil
		case "false":
			return variant.NewBool(false), nil
		}
		return variant.NewString(tok.text), nil
	}
	return variant.Variant{}, domain.ErrExprSyntax{Msg: fmt.Sprintf("expected field value, but found %q", tok.text), Pos: tok.pos}
}

// nameToken resolves a name token: an indexed field, a json path or a
// function call.
func (r *evalRun) nameToken(tok token) (float64, error) {
	r.parser.next()
	name := tok.text

	if d, ok := r.ev.fields.ResolveField(r.ev.namespace, name); ok {
		vals := r.ev.fields.Values(r.row, d.IndexNo)
		if d.IsArray {
			r.arrayMode = true
			r.arrayValues = append(r.arrayValues, vals...)
			return 0, nil
		}
		if r.arrayMode {
			r.arrayValues = append(r.arrayValues, vals...)
			return 0, nil
		}
		return scalarFieldValue(name, vals)
	}

	if vals, ok := r.ev.fields.ValuesByPath(r.row, name); ok && len(vals) > 0 {
		if len(vals) > 1 || r.arrayMode {
			r.arrayValues = append(r.arrayValues, vals...)
			return 0, nil
		}
		return scalarFieldValue(name, vals)
	}

	if next := r.parser.peek(); next.typ == tokenSymbol && next.text == "(" {
		return r.functionCall(name)
	}
	return 0, domain.ErrEmptyFieldValue{Field: name}
}

func scalarFieldValue(name string, vals variant.Array) (float64, error) {
	if len(vals) == 0 {
		return 0, domain.ErrEmptyFieldValue{Field: name}
	}
	switch vals[0].Type() {
	case variant.TypeInt, variant.TypeInt64, variant.TypeDouble:
		return vals[0].Float(), nil
	case variant.TypeBool, variant.TypeString, variant.TypeNull, variant.TypeUuid:
		return 0, domain.ErrFieldType{Field: name}
	}
	// Composite, tuple and undefined values cannot come out of a scalar
	// field; reaching one is an upstream bug.
	panic(fmt.Sprintf("unexpected %s value in arithmetical expression", vals[0].Type()))
}

func (r *evalRun) functionCall(name string) (float64, error) {
	r.parser.next()
	call := domain.FunctionCall{Name: name, Field: r.forField}
	var arg []byte
	for {
		tok := r.parser.next()
		switch {
		case tok.typ == tokenEnd:
			return 0, r.parser.errorf(tok.pos, "')' expected in function call")
		case tok.typ == tokenSymbol && tok.text == ")":
			if len(arg) > 0 {
				call.Args = append(call.Args, string(arg))
			}
			if r.ev.funcs == nil {
				return 0, domain.ErrFieldType{Field: name}
			}
			res, err := r.ev.funcs.Execute(call, r.row)
			if err != nil {
				return 0, err
			}
			return res.Float(), nil
		case tok.typ == tokenSymbol && tok.text == ",":
			call.Args = append(call.Args, string(arg))
			arg = arg[:0]
		default:
			arg = append(arg, tok.text...)
		}
	}
}
