package stdlib

import (
	"log/slog"
	"math"
	"os"

	"github.com/ardnew/mung"

	"github.com/ardnew/formula/lang"
)

// mungPrefix implements mung.prefix(subject, items...).
func mungPrefix(args []lang.Value) (lang.Value, error) {
	const name = "mung.prefix"

	if err := arity(name, args, 1, maxArgs); err != nil {
		return lang.None(), err
	}

	subject, ok := args[0].AsString()
	if !ok {
		return lang.None(), mismatch(name, args[0])
	}

	items, err := stringItems(name, args[1:])
	if err != nil {
		return lang.None(), err
	}

	return lang.String(mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()), nil
}

// mungPrefixIf implements mung.prefixif(subject, predicate, items...). The
// first error returned by the predicate aborts the call.
func mungPrefixIf(args []lang.Value) (lang.Value, error) {
	const name = "mung.prefixif"

	if err := arity(name, args, 2, maxArgs); err != nil {
		return lang.None(), err
	}

	subject, ok := args[0].AsString()
	if !ok {
		return lang.None(), mismatch(name, args[0])
	}

	pred, ok := args[1].AsFunc()
	if !ok || pred == nil || pred.Call == nil {
		return lang.None(), mismatch(name, args[1])
	}

	items, err := stringItems(name, args[2:])
	if err != nil {
		return lang.None(), err
	}

	var predErr error

	filter := func(item string) bool {
		if predErr != nil {
			return false
		}

		v, err := pred.Call([]lang.Value{lang.String(item)})
		if err != nil {
			predErr = err

			return false
		}

		keep, err := lang.Truthy(v)
		if err != nil {
			predErr = err

			return false
		}

		return keep
	}

	out := mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
		mung.WithFilter(filter),
	).String()

	if predErr != nil {
		return lang.None(), predErr
	}

	return lang.String(out), nil
}

const maxArgs = math.MaxInt

// stringItems flattens string and list-of-string arguments.
func stringItems(name string, args []lang.Value) ([]string, error) {
	items := make([]string, 0, len(args))

	for i, a := range args {
		if s, ok := a.AsString(); ok {
			items = append(items, s)

			continue
		}

		elems, ok := a.AsList()
		if !ok {
			return nil, mismatch(name, a)
		}

		for j, e := range elems {
			s, ok := e.AsString()
			if !ok {
				return nil, lang.ErrTypeMismatch.With(
					slog.String("function", name),
					slog.Int("arg", i),
					slog.Int("index", j),
					slog.String("kind", e.Kind().String()),
				)
			}

			items = append(items, s)
		}
	}

	return items, nil
}
