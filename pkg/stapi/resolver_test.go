package stapi

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingInit struct{}

func (*failingInit) Init(context.Context) error { return errors.New("no database") }

func TestConstructResolver(t *testing.T) {
	instance, err := ConstructResolver{}.Resolve(context.Background(), reflect.TypeFor[initGuard]())
	require.NoError(t, err)
	guard, ok := instance.(*initGuard)
	require.True(t, ok)
	assert.True(t, guard.ready)

	_, err = ConstructResolver{}.Resolve(context.Background(), reflect.TypeFor[*failingInit]())
	assert.ErrorContains(t, err, "no database")

	_, err = ConstructResolver{}.Resolve(context.Background(), reflect.TypeFor[Guard]())
	assert.ErrorIs(t, err, ErrNotProvided)
}

func TestInstanceResolver(t *testing.T) {
	provided := &initGuard{ready: true}

	r := NewInstanceResolver(nil).Provide(provided)
	instance, err := r.Resolve(context.Background(), reflect.TypeFor[*initGuard]())
	require.NoError(t, err)
	assert.Same(t, provided, instance)

	_, err = r.Resolve(context.Background(), reflect.TypeFor[failingInit]())
	assert.ErrorIs(t, err, ErrNotProvided)

	withFallback := NewInstanceResolver(ResolverFunc(func(context.Context, reflect.Type) (any, error) {
		return "fallback", nil
	}))
	instance, err = withFallback.Resolve(context.Background(), reflect.TypeFor[failingInit]())
	require.NoError(t, err)
	assert.Equal(t, "fallback", instance)
}

func TestResolveGuards_Optional(t *testing.T) {
	refs := []any{reflect.TypeFor[Guard](), reflect.TypeFor[initGuard]()}

	chain, err := resolveGuards(context.Background(), ConstructResolver{}, refs, true)
	require.NoError(t, err)
	assert.Len(t, chain, 1)

	_, err = resolveGuards(context.Background(), ConstructResolver{}, refs, false)
	assert.ErrorIs(t, err, ErrNotProvided)

	_, err = resolveGuards(context.Background(), NewInstanceResolver(nil).Provide("not a guard"), []any{reflect.TypeFor[string]()}, false)
	assert.ErrorContains(t, err, "does not implement Guard")
}
