// Package lang implements a small formula language modeled on Python
// expressions: arithmetic, comparison chains, conditionals, lists, tuples,
// indexing, inclusive slicing, list comprehensions and calls to host
// functions.
//
// A formula is parsed once into an immutable tree of [Expr] nodes and may
// then be evaluated any number of times, concurrently, against different
// [Environment] values.
//
// # Grammar
//
// Informal EBNF, lowest precedence first:
//
//	Ternary     → Or ['if' Or 'else' Ternary]
//	Or          → And ('or' And)*
//	And         → Not ('and' Not)*
//	Not         → 'not' Not | Comparison
//	Comparison  → Sum (CompareOp Sum)*
//	CompareOp   → '==' | '!=' | '<' | '>' | '<=' | '>=' | 'in' | 'not' 'in'
//	Sum         → Product (('+' | '-') Product)*
//	Product     → Unary (('*' | '/' | '%') Unary)*
//	Unary       → '-' Unary | Power
//	Power       → Postfix ['**' Power]
//	Postfix     → Atom (Call | Subscript)*
//	Atom        → Number | String | 'True' | 'False' | 'None' | Identifier
//	            | '(' [Ternary (',' Ternary)* [','] | Ternary Loops] ')'
//	            | '[' [Ternary (',' Ternary)* [','] | Ternary Loops] ']'
//	Loops       → ('for' Binder 'in' Or ('if' Or)*)+
//
// Strings have no escape sequences. Identifiers may contain '.', so
// "math.pi" is a single name.
//
// # Example
//
//	env := lang.Layer(lang.NewMap(map[string]lang.Value{
//		"layer_height": lang.Float(0.2),
//	}), stdlib.New())
//
//	e, err := lang.Parse(ctx, "round(layer_height * 3, 2)")
//	if err != nil {
//		return err
//	}
//
//	v, err := lang.Evaluate(ctx, e, env) // 0.6
//
// # Errors
//
// Parsing fails with a [*SyntaxError]. Evaluation fails with an error
// matching exactly one of [ErrTypeMismatch], [ErrUndefinedVariable],
// [ErrDivisionByZero], [ErrInvalidNumberOfArguments], [ErrIndexOutOfBounds]
// or [ErrValueError]; [ErrorKind] classifies it.
package lang
