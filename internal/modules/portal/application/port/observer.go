package port

import "time"

const (
	MutationDelete = "delete"
	MutationUpdate = "update"
	MutationCreate = "create"
	MutationFresh  = "fresh"
)

// ListObserver receives the outcome of every controller round-trip.
type ListObserver interface {
	ObserveFetch(entity string, elapsed time.Duration, err error)
	ObserveMutation(entity, kind string, err error)
	ObserveRollback(entity string)
	ObserveStale(entity string)
}

type NopObserver struct{}

func (NopObserver) ObserveFetch(string, time.Duration, error) {}
func (NopObserver) ObserveMutation(string, string, error)     {}
func (NopObserver) ObserveRollback(string)                    {}
func (NopObserver) ObserveStale(string)                       {}
