package provider

import (
	backend "qbackend/internal/backend"
)

// Provider owns a populated backend registry. The local provider carries
// the built-in simulators; the remote provider carries account devices.
type Provider interface {
	ID() string
	Registry() *backend.Registry
}

// LocalProvider registers the built-in simulators together with the
// standing deprecated-name and group tables. It has no aliases: display
// aliases are account-scoped and belong to the remote provider.
type LocalProvider struct {
	registry *backend.Registry
}

func NewLocalProvider() *LocalProvider {
	r := backend.NewRegistry()

	builtins := []backend.Backend{
		backend.QasmSimulator{},
		backend.StatevectorSimulator{},
		backend.UnitarySimulator{},
		backend.NativeQasmSimulator{},
		backend.NativeStatevectorSimulator{},
	}
	for _, b := range builtins {
		// Built-in names are distinct literals; registration cannot fail.
		_ = r.Register(b)
	}

	for old, canonical := range map[string]string{
		"qasm_simulator_py":         "qasm_simulator",
		"qasm_simulator_cpp":        "qasm_simulator_native",
		"statevector_simulator_py":  "statevector_simulator",
		"statevector_simulator_cpp": "statevector_simulator_native",
		"unitary_simulator_py":      "unitary_simulator",
	} {
		r.MapDeprecated(old, canonical)
	}

	// Native first: groups fall back to the pure-Go simulator only when
	// the accelerated one is not usable.
	r.SetGroup("qasm", "qasm_simulator_native", "qasm_simulator")
	r.SetGroup("statevector", "statevector_simulator_native", "statevector_simulator")
	r.SetGroup("unitary", "unitary_simulator")

	return &LocalProvider{registry: r}
}

func (p *LocalProvider) ID() string                  { return "local" }
func (p *LocalProvider) Registry() *backend.Registry { return p.registry }
