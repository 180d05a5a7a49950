package backend

import (
	"errors"
	"fmt"
	"testing"
)

type fakeBackend struct {
	name      string
	available bool
}

func (b *fakeBackend) Name() string        { return b.name }
func (b *fakeBackend) Available() bool     { return b.available }
func (b *fakeBackend) Description() string { return "fake backend " + b.name }

func mustRegister(t *testing.T, r *Registry, backends ...*fakeBackend) {
	t.Helper()
	for _, b := range backends {
		if err := r.Register(b); err != nil {
			t.Fatalf("Register(%s) error = %v", b.name, err)
		}
	}
}

func TestResolveExactMatch(t *testing.T) {
	r := NewRegistry()
	up := &fakeBackend{name: "sim_a", available: true}
	down := &fakeBackend{name: "sim_b", available: false}
	mustRegister(t, r, up, down)

	for _, b := range r.List() {
		got, err := r.Resolve(b.Name())
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", b.Name(), err)
		}
		if got != b {
			t.Fatalf("Resolve(%s) = %v, want the registered instance", b.Name(), got)
		}
	}

	// Exact requests bypass availability entirely.
	got, err := r.Resolve("sim_b")
	if err != nil {
		t.Fatalf("Resolve(sim_b) error = %v, want unavailable backend returned", err)
	}
	if got != down {
		t.Fatalf("Resolve(sim_b) = %v, want %v", got, down)
	}
}

func TestResolveUnknownName(t *testing.T) {
	r := NewRegistry()
	mustRegister(t, r, &fakeBackend{name: "sim_a", available: true})

	_, err := r.Resolve("definitely-not-a-backend-xyz")
	if err == nil {
		t.Fatal("Resolve(unknown) error = nil, want NotFoundError")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false, want true", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("errors.As failed for %v", err)
	}
	if nf.Name != "definitely-not-a-backend-xyz" {
		t.Fatalf("NotFoundError.Name = %q, want the requested name", nf.Name)
	}
}

func TestResolveDeprecatedEquivalence(t *testing.T) {
	r := NewRegistry()
	installed := &fakeBackend{name: "sim_new", available: true}
	mustRegister(t, r, installed)
	r.MapDeprecated("sim_old", "sim_new")
	r.MapDeprecated("sim_ancient", "sim_never_installed")

	for old, canonical := range r.Deprecated() {
		t.Run(old, func(t *testing.T) {
			want, err := r.Resolve(canonical)
			if err != nil {
				// The canonical target is not installed; the deprecated
				// name must fail the same way, and the equivalence check
				// is skipped.
				if !IsNotFound(err) {
					t.Fatalf("Resolve(%s) error = %v, want NotFoundError", canonical, err)
				}
				if _, err := r.Resolve(old); !IsNotFound(err) {
					t.Fatalf("Resolve(%s) error = %v, want NotFoundError", old, err)
				}
				return
			}

			got, err := r.Resolve(old)
			if err != nil {
				t.Fatalf("Resolve(%s) error = %v", old, err)
			}
			if got != want {
				t.Fatalf("Resolve(%s) = %v, want %v", old, got, want)
			}
		})
	}
}

func TestResolveAliasEquivalence(t *testing.T) {
	r := NewRegistry()
	device := &fakeBackend{name: "device_5_canary", available: true}
	mustRegister(t, r, device)
	r.SetAlias("canary", "device_5_canary")
	r.SetAlias("retired_display_name", "device_gone")

	for alias, canonical := range r.Aliases() {
		t.Run(alias, func(t *testing.T) {
			want, err := r.Resolve(canonical)
			if err != nil {
				if _, err := r.Resolve(alias); !IsNotFound(err) {
					t.Fatalf("Resolve(%s) error = %v, want NotFoundError", alias, err)
				}
				return
			}

			got, err := r.Resolve(alias)
			if err != nil {
				t.Fatalf("Resolve(%s) error = %v", alias, err)
			}
			if got != want {
				t.Fatalf("Resolve(%s) = %v, want %v", alias, got, want)
			}
			if got.Name() != canonical {
				t.Fatalf("Resolve(%s).Name() = %q, want %q", alias, got.Name(), canonical)
			}
		})
	}
}

func TestResolveGroupFallback(t *testing.T) {
	r := NewRegistry()
	native := &fakeBackend{name: "sim_cpp", available: false}
	pure := &fakeBackend{name: "sim_py", available: true}
	mustRegister(t, r, native, pure)
	r.SetGroup("sim", "sim_cpp", "sim_py")

	got, err := r.Resolve("sim")
	if err != nil {
		t.Fatalf("Resolve(sim) error = %v", err)
	}
	if got != pure {
		t.Fatalf("Resolve(sim) = %v, want fallback %v", got, pure)
	}

	// Availability is evaluated at lookup time: once the native simulator
	// comes up, the same group request picks it.
	native.available = true
	got, err = r.Resolve("sim")
	if err != nil {
		t.Fatalf("Resolve(sim) error = %v", err)
	}
	if got != native {
		t.Fatalf("Resolve(sim) = %v, want %v after availability flip", got, native)
	}
}

func TestResolveGroupNeverReturnsUnavailable(t *testing.T) {
	r := NewRegistry()
	only := &fakeBackend{name: "sim_cpp", available: false}
	mustRegister(t, r, only)
	r.SetGroup("sim", "sim_cpp")

	if _, err := r.Resolve("sim"); !IsNotFound(err) {
		t.Fatalf("Resolve(sim) error = %v, want NotFoundError for all-unavailable group", err)
	}
}

func TestResolveGroupSkipsUnregisteredCandidates(t *testing.T) {
	r := NewRegistry()
	pure := &fakeBackend{name: "sim_py", available: true}
	mustRegister(t, r, pure)
	r.SetGroup("sim", "sim_cpp", "sim_py")

	got, err := r.Resolve("sim")
	if err != nil {
		t.Fatalf("Resolve(sim) error = %v", err)
	}
	if got != pure {
		t.Fatalf("Resolve(sim) = %v, want %v", got, pure)
	}
}

func TestResolvePrecedence(t *testing.T) {
	r := NewRegistry()
	exact := &fakeBackend{name: "clash", available: false}
	aliasTarget := &fakeBackend{name: "alias_target", available: true}
	deprecatedTarget := &fakeBackend{name: "deprecated_target", available: true}
	groupTarget := &fakeBackend{name: "group_target", available: true}
	mustRegister(t, r, exact, aliasTarget, deprecatedTarget, groupTarget)

	r.SetAlias("clash", "alias_target")
	r.MapDeprecated("clash", "deprecated_target")
	r.SetGroup("clash", "group_target")

	got, err := r.Resolve("clash")
	if err != nil {
		t.Fatalf("Resolve(clash) error = %v", err)
	}
	if got != exact {
		t.Fatalf("Resolve(clash) = %v, want the exact match even when unavailable", got)
	}
}

func TestResolveAliasBeatsDeprecated(t *testing.T) {
	r := NewRegistry()
	aliasTarget := &fakeBackend{name: "alias_target", available: true}
	deprecatedTarget := &fakeBackend{name: "deprecated_target", available: true}
	mustRegister(t, r, aliasTarget, deprecatedTarget)

	r.SetAlias("x", "alias_target")
	r.MapDeprecated("x", "deprecated_target")

	got, err := r.Resolve("x")
	if err != nil {
		t.Fatalf("Resolve(x) error = %v", err)
	}
	if got != aliasTarget {
		t.Fatalf("Resolve(x) = %v, want alias target %v", got, aliasTarget)
	}
}

func TestResolveAliasTargetDoesNotReenterTables(t *testing.T) {
	r := NewRegistry()
	target := &fakeBackend{name: "real", available: true}
	mustRegister(t, r, target)

	// The alias points at a name that is itself a group and a deprecated
	// name; alias targets resolve via exact lookup only, so this is a miss.
	r.SetAlias("shortcut", "indirect")
	r.MapDeprecated("indirect", "real")
	r.SetGroup("indirect", "real")

	if _, err := r.Resolve("shortcut"); !IsNotFound(err) {
		t.Fatalf("Resolve(shortcut) error = %v, want NotFoundError (no table re-entry)", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := NewRegistry()
	mustRegister(t, r,
		&fakeBackend{name: "sim_py", available: true},
		&fakeBackend{name: "sim_cpp", available: false})
	r.SetAlias("display", "sim_py")
	r.MapDeprecated("legacy", "sim_py")
	r.SetGroup("sim", "sim_cpp", "sim_py")

	for _, name := range []string{"sim_py", "display", "legacy", "sim"} {
		first, err1 := r.Resolve(name)
		second, err2 := r.Resolve(name)
		if err1 != nil || err2 != nil {
			t.Fatalf("Resolve(%s) errors = %v, %v", name, err1, err2)
		}
		if first != second {
			t.Fatalf("Resolve(%s) not idempotent: %v then %v", name, first, second)
		}
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{Name: "bad_name"}
	want := fmt.Sprintf("unsupported backend %q", "bad_name")
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
