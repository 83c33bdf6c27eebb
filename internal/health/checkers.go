// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import "context"

// FuncChecker adapts a function into a Checker.
type FuncChecker struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

// NewFuncChecker creates a Checker named name that runs fn.
func NewFuncChecker(name string, fn func(ctx context.Context) CheckResult) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// FlagChecker reports healthy while ok returns true and otherStatus with
// message otherwise.
func FlagChecker(name string, ok func() bool, otherStatus Status, message string) *FuncChecker {
	return NewFuncChecker(name, func(context.Context) CheckResult {
		if ok() {
			return CheckResult{Status: StatusHealthy}
		}
		return CheckResult{Status: otherStatus, Message: message}
	})
}
