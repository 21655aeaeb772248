package store

import (
	"fmt"
	"math"
)

// Derived operations are a Get followed by a Set. Two concurrent calls on the
// same key can both read the old value, and the last Set wins.

// Increment adds amount to the number stored under key and stores the result.
// A missing or non-numeric value counts as 0. NaN and ±Inf amounts are rejected.
func (s *Store) Increment(key string, amount float64) (result float64, err error) {
	defer s.metrics.observe("increment", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, NewError(CodeInvalidArgument, fmt.Sprintf("amount must be a finite number, got %v", amount))
	}

	current, _, err := s.get(b, key)
	if err != nil {
		return 0, err
	}
	n, _ := current.(float64)
	result = n + amount
	if err = s.set(b, key, result); err != nil {
		return 0, err
	}
	return result, nil
}

// Decrement is Increment with the negated amount.
func (s *Store) Decrement(key string, amount float64) (float64, error) {
	return s.Increment(key, -amount)
}

// IncrementOne is Increment(key, 1).
func (s *Store) IncrementOne(key string) (float64, error) {
	return s.Increment(key, 1)
}

// DecrementOne is Decrement(key, 1).
func (s *Store) DecrementOne(key string) (float64, error) {
	return s.Decrement(key, 1)
}

// Toggle stores and returns the negation of the truthiness of the value under key.
// A missing key toggles to true.
func (s *Store) Toggle(key string) (result bool, err error) {
	defer s.metrics.observe("toggle", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return false, err
	}

	current, _, err := s.get(b, key)
	if err != nil {
		return false, err
	}
	result = !truthy(current)
	if err = s.set(b, key, result); err != nil {
		return false, err
	}
	return result, nil
}

// Append adds value at the end of the array under key and returns the stored array.
// A missing or non-array value counts as an empty array.
func (s *Store) Append(key string, value any) (list []any, err error) {
	defer s.metrics.observe("append", &err)
	return s.modifyList(key, func(current []any) []any {
		return append(current, value)
	})
}

// Prepend adds value at the start of the array under key and returns the stored array.
// A missing or non-array value counts as an empty array.
func (s *Store) Prepend(key string, value any) (list []any, err error) {
	defer s.metrics.observe("prepend", &err)
	return s.modifyList(key, func(current []any) []any {
		return append([]any{value}, current...)
	})
}

func (s *Store) modifyList(key string, fn func(current []any) []any) ([]any, error) {
	b := s.ensureReady()
	if err := validateKey(key); err != nil {
		return nil, err
	}

	current, _, err := s.get(b, key)
	if err != nil {
		return nil, err
	}
	list, _ := current.([]any)
	list = fn(list)
	if list == nil {
		list = []any{}
	}
	if err := s.set(b, key, list); err != nil {
		return nil, err
	}
	return list, nil
}

// truthy follows JavaScript truthiness for decoded JSON values.
// Objects and arrays are truthy even when empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}
