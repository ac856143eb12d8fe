// Package strategies implements the interchangeable post list retrieval
// algorithms and the registry that selects one by name.
package strategies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"strategyboard/app/models"
	"strategyboard/app/repositories"
)

// Strategy is a named post list retrieval algorithm.
type Strategy interface {
	Name() string
	Load(ctx context.Context, req models.ListRequest) (*models.PageResponse, error)
}

// ErrUnsupportedStrategy matches any UnsupportedStrategyError.
var ErrUnsupportedStrategy = errors.New("unsupported strategy")

// UnsupportedStrategyError reports a strategy name that is not registered.
type UnsupportedStrategyError struct {
	Name      string
	Supported []string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("unsupported strategy %q, supported strategies: [%s]",
		e.Name, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedStrategyError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// Registry maps strategy names to implementations. It is built once and
// read concurrently afterwards.
type Registry struct {
	strategies map[string]Strategy
	names      []string
}

// NewRegistry registers the given strategies under their names. A later
// strategy replaces an earlier one with the same name.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Name()] = s
	}
	for name := range r.strategies {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// NewDefaultRegistry registers the built-in pagination and infinite scroll
// strategies over repo.
func NewDefaultRegistry(repo repositories.PostRepository) *Registry {
	return NewRegistry(NewPagination(repo), NewInfiniteScroll(repo))
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, &UnsupportedStrategyError{Name: name, Supported: r.Names()}
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
