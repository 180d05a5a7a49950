package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	backend "qbackend/internal/backend"
)

type memorySource struct {
	data []byte
	err  error
}

func (s *memorySource) DeviceMetadata() ([]byte, error) {
	return s.data, s.err
}

const sampleMetadata = `[
  {"name": "device_16_rigi", "display_name": "rigi", "operational": true, "n_qubits": 16},
  {"name": "device_5_canary", "display_name": "canary", "operational": false, "n_qubits": 5,
   "description": "5-qubit canary chip"},
  {"name": "device_sim_cloud", "operational": true}
]`

func TestUseAccountRegistersDevicesAndAliases(t *testing.T) {
	p := NewRemoteProvider(&memorySource{data: []byte(sampleMetadata)})
	if err := p.UseAccount(); err != nil {
		t.Fatalf("UseAccount() error = %v", err)
	}
	r := p.Registry()

	byName, err := r.Resolve("device_16_rigi")
	if err != nil {
		t.Fatalf("Resolve(device_16_rigi) error = %v", err)
	}
	byAlias, err := r.Resolve("rigi")
	if err != nil {
		t.Fatalf("Resolve(rigi) error = %v", err)
	}
	if byAlias != byName {
		t.Fatalf("alias resolved to %v, want the same handle as the canonical name", byAlias)
	}
	if byAlias.Name() != "device_16_rigi" {
		t.Fatalf("Resolve(rigi).Name() = %q, want device_16_rigi", byAlias.Name())
	}

	// No display name, no alias.
	if _, ok := r.Aliases()["device_sim_cloud"]; ok {
		t.Fatal("device without display name grew an alias")
	}
	if got := len(r.Aliases()); got != 2 {
		t.Fatalf("alias table has %d entries, want 2", got)
	}
}

func TestRemoteDeviceAvailabilityTracksOperationalFlag(t *testing.T) {
	src := &memorySource{data: []byte(sampleMetadata)}
	p := NewRemoteProvider(src)
	if err := p.UseAccount(); err != nil {
		t.Fatalf("UseAccount() error = %v", err)
	}
	r := p.Registry()

	canary, err := r.Resolve("device_5_canary")
	if err != nil {
		t.Fatalf("Resolve(device_5_canary) error = %v", err)
	}
	if canary.Available() {
		t.Fatal("non-operational device reported available")
	}

	src.data = []byte(strings.Replace(sampleMetadata,
		`"device_5_canary", "display_name": "canary", "operational": false`,
		`"device_5_canary", "display_name": "canary", "operational": true`, 1))
	if err := p.RefreshStatus(); err != nil {
		t.Fatalf("RefreshStatus() error = %v", err)
	}

	if !canary.Available() {
		t.Fatal("device still unavailable after refresh flipped its flag")
	}
}

func TestUseAccountIsRepeatable(t *testing.T) {
	p := NewRemoteProvider(&memorySource{data: []byte(sampleMetadata)})
	if err := p.UseAccount(); err != nil {
		t.Fatalf("first UseAccount() error = %v", err)
	}
	if err := p.UseAccount(); err != nil {
		t.Fatalf("second UseAccount() error = %v", err)
	}
	if got := len(p.Registry().List()); got != 3 {
		t.Fatalf("registry has %d devices after repeated UseAccount, want 3", got)
	}
}

func TestUseAccountWithEmptyMetadata(t *testing.T) {
	p := NewRemoteProvider(&memorySource{data: nil})
	if err := p.UseAccount(); err != nil {
		t.Fatalf("UseAccount() error = %v, want empty metadata treated as normal", err)
	}
	if got := len(p.Registry().List()); got != 0 {
		t.Fatalf("registry has %d devices, want 0", got)
	}
	if _, err := p.Registry().Resolve("anything"); !backend.IsNotFound(err) {
		t.Fatalf("Resolve on empty registry error = %v, want NotFoundError", err)
	}
}

func TestUseAccountRejectsMalformedMetadata(t *testing.T) {
	p := NewRemoteProvider(&memorySource{data: []byte("{not json")})
	if err := p.UseAccount(); err == nil {
		t.Fatal("UseAccount() error = nil for malformed metadata, want error")
	}
}

func TestRemoteDeviceDescriptionIsSanitized(t *testing.T) {
	meta := `[{"name": "device_x", "operational": true,
	  "description": "clean[31m colored[0m text"}]`
	p := NewRemoteProvider(&memorySource{data: []byte(meta)})
	if err := p.UseAccount(); err != nil {
		t.Fatalf("UseAccount() error = %v", err)
	}

	b, err := p.Registry().Resolve("device_x")
	if err != nil {
		t.Fatalf("Resolve(device_x) error = %v", err)
	}
	if strings.ContainsRune(b.Description(), '\x1b') {
		t.Fatalf("Description() = %q, escape sequences should be stripped", b.Description())
	}
}

func TestFileMetadataSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.json")
	if err := os.WriteFile(path, []byte(sampleMetadata), 0o600); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	p := NewRemoteProvider(FileMetadataSource{Path: path})
	if err := p.UseAccount(); err != nil {
		t.Fatalf("UseAccount() error = %v", err)
	}
	if got := len(p.Registry().List()); got != 3 {
		t.Fatalf("registry has %d devices, want 3", got)
	}
}

func TestFileMetadataSourceRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.json")
	big := make([]byte, MaxMetadataBytes+1)
	if err := os.WriteFile(path, big, 0o600); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	if _, err := (FileMetadataSource{Path: path}).DeviceMetadata(); err == nil {
		t.Fatal("DeviceMetadata() error = nil for oversized file, want error")
	}
}

func TestFileMetadataSourceMissingFile(t *testing.T) {
	src := FileMetadataSource{Path: filepath.Join(t.TempDir(), "absent.json")}
	if _, err := src.DeviceMetadata(); err == nil {
		t.Fatal("DeviceMetadata() error = nil for missing file, want error")
	}
}
