// Package services contains the dashboard business logic: member
// registration, the three aggregate reports, CSV export and archiving of
// exports to object storage.
package services

import (
	"time"
)

// Observer receives measurements from the services. metrics.Collectors
// implements it.
type Observer interface {
	ObserveRegistration(err error)
	ObserveReport(report string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRegistration(error)                  {}
func (nopObserver) ObserveReport(string, time.Duration, error) {}

type options struct {
	now      func() time.Time
	observer Observer
}

// Option customises a service.
type Option func(*options)

// WithClock replaces time.Now; the registration day and the "today" of the
// active-subscriptions report are taken from it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver reports registrations and report timings to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
