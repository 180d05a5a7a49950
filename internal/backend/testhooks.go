package backend

import (
	"os"
	"os/exec"

	"github.com/shirou/gopsutil/v3/mem"
)

func SetLookPathFn(fn func(string) (string, error)) (restore func()) {
	prev := lookPathFn
	if fn != nil {
		lookPathFn = fn
	} else {
		lookPathFn = exec.LookPath
	}
	return func() { lookPathFn = prev }
}

func SetStatFn(fn func(string) (os.FileInfo, error)) (restore func()) {
	prev := statFn
	if fn != nil {
		statFn = fn
	} else {
		statFn = os.Stat
	}
	return func() { statFn = prev }
}

func SetVirtualMemoryFn(fn func() (*mem.VirtualMemoryStat, error)) (restore func()) {
	prev := virtualMemoryFn
	if fn != nil {
		virtualMemoryFn = fn
	} else {
		virtualMemoryFn = mem.VirtualMemory
	}
	return func() { virtualMemoryFn = prev }
}
