package backend

// Backend is a handle to a registered quantum backend: a local simulator or
// a remote device. A handle only identifies and describes the backend; it
// never executes circuits.
type Backend interface {
	// Name returns the canonical name, unique within a registry.
	Name() string
	// Available reports whether the backend can currently be used. The
	// answer may depend on the runtime environment (native simulator
	// installed, device operational) and is evaluated per call, never
	// cached by the registry.
	Available() bool
	// Description returns a short human-readable summary.
	Description() string
}

var (
	logWarnFn  = func(string) {}
	logErrorFn = func(string) {}
)

// SetLogFuncs configures optional logging hooks used by availability probes.
// Callers can safely pass nil to disable a hook.
func SetLogFuncs(warnFn, errorFn func(string)) {
	if warnFn != nil {
		logWarnFn = warnFn
	} else {
		logWarnFn = func(string) {}
	}
	if errorFn != nil {
		logErrorFn = errorFn
	} else {
		logErrorFn = func(string) {}
	}
}
