package repository

import (
	"fmt"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
)

// SourceError is a transport failure, an unexpected status or a malformed body
// returned by the upstream API for one store.
type SourceError struct {
	Store model.StoreCode
	Op    string // "request", "status" or "decode"
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source: store %s: %s: %v", e.Store, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NotifyError is a failure to deliver a message through one transport.
type NotifyError struct {
	Transport string
	Err       error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify: %s: %v", e.Transport, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
