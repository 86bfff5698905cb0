package stapi

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Guard decides whether a request may reach its handler. Returning an
// *Exception as the error replies with it; any other error is an unknown
// internal server error.
type Guard interface {
	Handle(ec *ExecutionContext) (bool, error)
}

// GuardFunc adapts a function to the Guard interface
type GuardFunc func(ec *ExecutionContext) (bool, error)

func (f GuardFunc) Handle(ec *ExecutionContext) (bool, error) {
	return f(ec)
}

// GuardChain evaluates guards in order
type GuardChain []Guard

// Evaluate runs the guards sequentially and stops at the first rejection.
// It returns nil when every guard allows the request.
func (c GuardChain) Evaluate(ec *ExecutionContext) *Exception {
	for _, guard := range c {
		allowed, err := runGuard(guard, ec)
		if err != nil {
			return asException(err)
		}
		if !allowed {
			return Forbidden("")
		}
	}
	return nil
}

func runGuard(guard Guard, ec *ExecutionContext) (allowed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guard %T panicked: %v", guard, r)
		}
	}()
	return guard.Handle(ec)
}

// resolveGuard turns a guard reference into a Guard
func resolveGuard(ctx context.Context, resolver Resolver, ref any) (Guard, error) {
	switch g := ref.(type) {
	case Guard:
		return g, nil
	case reflect.Type:
		instance, err := resolver.Resolve(ctx, g)
		if err != nil {
			return nil, err
		}
		guard, ok := instance.(Guard)
		if !ok {
			return nil, fmt.Errorf("%T does not implement Guard", instance)
		}
		return guard, nil
	default:
		return nil, fmt.Errorf("%T is neither a Guard nor a reflect.Type", ref)
	}
}

// resolveGuards resolves refs in order. When optional is set, references
// the resolver does not provide are skipped.
func resolveGuards(ctx context.Context, resolver Resolver, refs []any, optional bool) (GuardChain, error) {
	chain := make(GuardChain, 0, len(refs))
	for _, ref := range refs {
		guard, err := resolveGuard(ctx, resolver, ref)
		if err != nil {
			if optional && errors.Is(err, ErrNotProvided) {
				continue
			}
			return nil, err
		}
		chain = append(chain, guard)
	}
	return chain, nil
}
