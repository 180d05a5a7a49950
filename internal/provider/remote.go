package provider

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	backend "qbackend/internal/backend"
	utils "qbackend/internal/utils"

	"github.com/goccy/go-json"
)

// MetadataSource supplies account-scoped device metadata. Implementations
// own transport, authentication and session state; the provider only
// decodes what they return. An established session is a precondition for
// UseAccount, not something the provider arranges.
type MetadataSource interface {
	DeviceMetadata() ([]byte, error)
}

// DeviceInfo is one device entry in the account metadata document.
type DeviceInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Operational bool   `json:"operational"`
	Qubits      int    `json:"n_qubits,omitempty"`
	Description string `json:"description,omitempty"`
}

const MaxMetadataBytes = 1 << 20 // 1MB

// FileMetadataSource reads a metadata document from disk. Useful for
// offline accounts and tests; the hosted service hands the same document
// over HTTPS.
type FileMetadataSource struct {
	Path string
}

func (s FileMetadataSource) DeviceMetadata() ([]byte, error) {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		return nil, fmt.Errorf("metadata source: empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxMetadataBytes {
		return nil, fmt.Errorf("metadata source: %s exceeds %d bytes", path, MaxMetadataBytes)
	}
	return os.ReadFile(path) // #nosec G304 -- path is caller-configured account metadata
}

// RemoteProvider registers account devices and their display-name aliases.
// Device availability tracks the operational flag from the most recent
// metadata refresh, read per lookup.
type RemoteProvider struct {
	registry *backend.Registry
	source   MetadataSource
	status   atomic.Pointer[map[string]bool]
}

func NewRemoteProvider(source MetadataSource) *RemoteProvider {
	p := &RemoteProvider{
		registry: backend.NewRegistry(),
		source:   source,
	}
	empty := map[string]bool{}
	p.status.Store(&empty)
	return p
}

func (p *RemoteProvider) ID() string                  { return "remote" }
func (p *RemoteProvider) Registry() *backend.Registry { return p.registry }

// UseAccount decodes the account metadata and populates the registry:
// one device handle per entry, plus an alias for each display name. An
// empty document is a normal state (no devices visible to the account).
func (p *RemoteProvider) UseAccount() error {
	devices, err := p.fetch()
	if err != nil {
		return err
	}

	status := make(map[string]bool, len(devices))
	for _, dev := range devices {
		name := strings.TrimSpace(dev.Name)
		if name == "" {
			continue
		}
		status[name] = dev.Operational

		if _, exists := p.registry.Get(name); !exists {
			if err := p.registry.Register(&RemoteDevice{
				name:        name,
				qubits:      dev.Qubits,
				description: utils.SanitizeOutput(dev.Description),
				provider:    p,
			}); err != nil {
				return err
			}
		}
		if display := strings.TrimSpace(dev.DisplayName); display != "" && display != name {
			p.registry.SetAlias(display, name)
		}
	}

	p.status.Store(&status)
	return nil
}

// RefreshStatus re-reads the metadata and updates operational flags
// without touching the registered handles or alias table.
func (p *RemoteProvider) RefreshStatus() error {
	devices, err := p.fetch()
	if err != nil {
		return err
	}
	status := make(map[string]bool, len(devices))
	for _, dev := range devices {
		if name := strings.TrimSpace(dev.Name); name != "" {
			status[name] = dev.Operational
		}
	}
	p.status.Store(&status)
	return nil
}

func (p *RemoteProvider) fetch() ([]DeviceInfo, error) {
	data, err := p.source.DeviceMetadata()
	if err != nil {
		return nil, fmt.Errorf("account metadata: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var devices []DeviceInfo
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("account metadata: %w", err)
	}
	return devices, nil
}

func (p *RemoteProvider) operational(name string) bool {
	status := *p.status.Load()
	return status[name]
}

// RemoteDevice is the handle for one account device. Availability reads
// the provider's latest status snapshot, so a device dropping out of
// service is observed on the next lookup after a refresh.
type RemoteDevice struct {
	name        string
	qubits      int
	description string
	provider    *RemoteProvider
}

func (d *RemoteDevice) Name() string    { return d.name }
func (d *RemoteDevice) Available() bool { return d.provider.operational(d.name) }
func (d *RemoteDevice) Description() string {
	if d.description != "" {
		return d.description
	}
	if d.qubits > 0 {
		return fmt.Sprintf("%d-qubit device", d.qubits)
	}
	return "Remote device"
}

// Qubits returns the device width from the metadata, 0 if unreported.
func (d *RemoteDevice) Qubits() int { return d.qubits }
