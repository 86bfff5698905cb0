// Package exampleapp is a small stapi application: a guarded create route
// validated with JSON schemas and a user lookup validated with struct tags.
package exampleapp

import (
	"context"
	"net/http"
	"reflect"
	"sync"

	"github.com/stlmpp/stapi/pkg/schema/jsonschema"
	"github.com/stlmpp/stapi/pkg/schema/structschema"
	"github.com/stlmpp/stapi/pkg/stapi"
)

// HeaderAPIKey carries the key checked by KeyGuard
const HeaderAPIKey = "x-api-key"

// UserNotFound is returned when a user id is unknown
var UserNotFound = stapi.NewExceptionFactory(stapi.ExceptionDefinition{
	ErrorCode:   "USER-0001",
	Message:     "User not found",
	Status:      http.StatusNotFound,
	Description: "No user exists with the requested id",
})

var idObject = jsonschema.Properties(map[string]jsonschema.Definition{
	"id": {"type": "integer"},
}, "id")

type idInput struct {
	ID int `json:"id"`
}

// RootController echoes the id it is posted to
type RootController struct{}

func (RootController) Handle(params idInput, query idInput, body *idInput) map[string]int {
	return map[string]int{"id": params.ID}
}

// KeyGuard admits requests carrying the configured API key. The zero value
// rejects everything.
type KeyGuard struct {
	Key string
}

func (g *KeyGuard) Handle(ec *stapi.ExecutionContext) (bool, error) {
	if g.Key == "" || ec.Request() == nil {
		return false, nil
	}
	return ec.Request().Request().Header(HeaderAPIKey) == g.Key, nil
}

// User is the resource served by UserController
type User struct {
	ID   int    `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type userParams struct {
	ID int `json:"id" validate:"required,min=1"`
}

// UserStore is an in-memory user table
type UserStore struct {
	mu    sync.RWMutex
	users map[int]User
}

// NewUserStore creates a store holding users
func NewUserStore(users ...User) *UserStore {
	s := &UserStore{users: make(map[int]User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) Get(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// UserController looks users up by id
type UserController struct {
	Store *UserStore
}

func (c *UserController) Handle(ctx context.Context, params userParams) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	user, ok := c.Store.Get(params.ID)
	if !ok {
		return User{}, UserNotFound("")
	}
	return user, nil
}

// Register declares the metadata of the example handlers in registry
func Register(registry *stapi.Registry) {
	registry.Annotate(RootController{}).
		Route(http.MethodPost, "/:id").
		Params(0, idObject).
		Query(1, jsonschema.Properties(map[string]jsonschema.Definition{"id": {"type": "integer"}})).
		Body(2, idObject.AsOptional()).
		Response(jsonschema.Properties(map[string]jsonschema.Definition{"id": {"type": "number"}}, "id"), http.StatusCreated).
		UseGuards(reflect.TypeFor[KeyGuard]())

	registry.Annotate(UserController{}).
		Route(http.MethodGet, "/users/:id").
		Ctx(0).
		Params(1, structschema.For[userParams]()).
		Response(structschema.For[User](), http.StatusOK).
		Exceptions(UserNotFound)
}

// Controllers lists the handlers to compile, resolved by type
func Controllers() []any {
	return []any{reflect.TypeFor[RootController](), reflect.TypeFor[UserController]()}
}

// Resolver provides the guard and the user store. An empty key makes
// KeyGuard reject every request.
func Resolver(key string, store *UserStore) stapi.Resolver {
	return stapi.NewInstanceResolver(stapi.ConstructResolver{}).Provide(
		&KeyGuard{Key: key},
		&UserController{Store: store},
	)
}

// SeedUsers is the data served by the CLI
func SeedUsers() *UserStore {
	return NewUserStore(
		User{ID: 1, Name: "Ada Lovelace"},
		User{ID: 2, Name: "Grace Hopper"},
	)
}
