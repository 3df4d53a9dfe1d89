package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned when an address fails the universal-format check.
var ErrInvalidFormat = errors.New("invalid address format")

// UsageError reports malformed command arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// NotFoundError reports an unknown chain, unlisted wallet or non-subscriber.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// ConnectionError is an initial connect failure. It stops the network's monitor.
type ConnectionError struct {
	Network NetworkName
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Network, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PollError is a transient failure inside one poll cycle.
type PollError struct {
	Network NetworkName
	Op      string
	Err     error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll %s (%s): %v", e.Network, e.Op, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// DeliveryError is a failure to deliver to a single recipient.
type DeliveryError struct {
	Recipient SubscriberID
	Transport string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s via %s: %v", e.Recipient, e.Transport, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
