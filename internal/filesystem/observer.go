package filesystem

import "sync/atomic"

// Observer records filesystem operation metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and metrics.
type Observer interface {
	// ObserveOperation records duration and error status for a filesystem operation.
	// operation is one of "stat", "open", "readdir".
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(op, volume string)
	ObserveRetrySuccess(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveStaleError(op, volume string)
}

type observerHolder struct{ Observer }

var defaultObserver atomic.Pointer[observerHolder]

// SetObserver sets the package-level metrics observer. Passing nil disables recording.
func SetObserver(o Observer) {
	if o == nil {
		defaultObserver.Store(nil)
		return
	}
	defaultObserver.Store(&observerHolder{o})
}

// observe returns the installed observer or a no-op one.
func observe() Observer {
	if h := defaultObserver.Load(); h != nil {
		return h.Observer
	}
	return nopObserver{}
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string, string)              {}
func (nopObserver) ObserveRetrySuccess(string, string)              {}
func (nopObserver) ObserveRetryFailure(string, string)              {}
func (nopObserver) ObserveStaleError(string, string)                {}
