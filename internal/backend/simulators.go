package backend

import (
	"fmt"
	"os"
	"os/exec"

	config "qbackend/internal/config"

	"github.com/shirou/gopsutil/v3/mem"
)

// Pure-Go simulators ship with the SDK and are always usable.

type QasmSimulator struct{}

func (QasmSimulator) Name() string        { return "qasm_simulator" }
func (QasmSimulator) Available() bool     { return true }
func (QasmSimulator) Description() string { return "Pure-Go QASM shot simulator" }

type StatevectorSimulator struct{}

func (StatevectorSimulator) Name() string    { return "statevector_simulator" }
func (StatevectorSimulator) Available() bool { return true }
func (StatevectorSimulator) Description() string {
	return "Pure-Go statevector simulator"
}

type UnitarySimulator struct{}

func (UnitarySimulator) Name() string        { return "unitary_simulator" }
func (UnitarySimulator) Available() bool     { return true }
func (UnitarySimulator) Description() string { return "Pure-Go unitary matrix simulator" }

// Native simulators wrap an optional accelerated binary. They stay
// registered whether or not the binary is installed; availability is
// probed on every call so an install or uninstall between calls is
// observed without restarting.

type NativeQasmSimulator struct{}

func (NativeQasmSimulator) Name() string        { return "qasm_simulator_native" }
func (NativeQasmSimulator) Available() bool     { return nativeSimAvailable() }
func (NativeQasmSimulator) Description() string { return "Native-accelerated QASM simulator" }

type NativeStatevectorSimulator struct{}

func (NativeStatevectorSimulator) Name() string    { return "statevector_simulator_native" }
func (NativeStatevectorSimulator) Available() bool { return nativeSimAvailable() }
func (NativeStatevectorSimulator) Description() string {
	return "Native-accelerated statevector simulator"
}

var (
	lookPathFn      = exec.LookPath
	statFn          = os.Stat
	virtualMemoryFn = mem.VirtualMemory
)

// nativeSimAvailable probes for the native simulator: the configured
// executable must exist and the host must have the configured memory
// headroom. Probe failures other than "not installed" only demote the
// backend to unavailable; they are never fatal.
func nativeSimAvailable() bool {
	path := config.NativeSimPath()
	if config.NativeSimPathExplicit() {
		if _, err := statFn(path); err != nil {
			return false
		}
	} else if _, err := lookPathFn(path); err != nil {
		return false
	}

	minBytes := config.NativeMinMemoryBytes()
	if minBytes == 0 {
		return true
	}
	vm, err := virtualMemoryFn()
	if err != nil {
		logWarnFn(fmt.Sprintf("native simulator memory probe failed: %v", err))
		return false
	}
	return vm.Available >= minBytes
}
