// Copyright (c) 2026 ToeiRei
// Paydesk - payment recipient allocation
// This source code is licensed under the MIT license found in the LICENSE file.

// Package slicest holds small generic slice helpers.
//
// Suffixes follow one scheme:
//   - X: the callback may fail; the first error stops the walk.
//   - D: the caller passes the initial accumulator.
//   - I: the callback also receives the index.
package slicest

// Reduce

// ReduceXD reduces slice S to type U with initial value and error propagation.
func ReduceXD[T any, S ~[]T, U any](s S, init U, fn func(T, U) (U, error)) (U, error) {
	acc := init
	for _, v := range s {
		var err error
		if acc, err = fn(v, acc); err != nil {
			return acc, err
		}
	}
	return acc, nil
}

// ReduceD reduces slice S to type U using explicit initial value.
func ReduceD[T any, S ~[]T, U any](s S, init U, fn func(T, U) U) U {
	result, _ := ReduceXD(s, init, func(t T, u U) (U, error) {
		return fn(t, u), nil
	})
	return result
}

// Map

func MapXI[T, U any, S ~[]T](s S, fn func(int, T) (U, error)) ([]U, error) {
	result := make([]U, len(s))
	for i, v := range s {
		out, err := fn(i, v)
		if err != nil {
			return nil, err
		}
		result[i] = out
	}
	return result, nil
}

func MapX[T, U any, S ~[]T](s S, fn func(T) (U, error)) ([]U, error) {
	return MapXI(s, func(_ int, t T) (U, error) {
		return fn(t)
	})
}

func Map[T, U any, S ~[]T](s S, fn func(T) U) []U {
	result, _ := MapXI(s, func(_ int, t T) (U, error) {
		return fn(t), nil
	})
	return result
}
