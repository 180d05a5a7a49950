package backend

// Resolve maps a requested name to exactly one backend. Precedence, first
// match wins:
//
//  1. exact canonical name — returned even if currently unavailable
//  2. alias (account display name) — target fetched by exact name only
//  3. deprecated name — target fetched by exact name only
//  4. group — first candidate that is registered and available
//
// Alias and deprecated targets that are not registered, and groups with no
// available candidate, fail with the same NotFoundError a typo gets.
// Resolution is a pure read over a single registry snapshot.
func (r *Registry) Resolve(name string) (Backend, error) {
	t := r.snapshot()

	if b, ok := t.backends[name]; ok {
		return b, nil
	}

	if canonical, ok := t.aliases[name]; ok {
		if b, ok := t.backends[canonical]; ok {
			return b, nil
		}
		return nil, &NotFoundError{Name: name}
	}

	if canonical, ok := t.deprecated[name]; ok {
		if b, ok := t.backends[canonical]; ok {
			return b, nil
		}
		return nil, &NotFoundError{Name: name}
	}

	if candidates, ok := t.groups[name]; ok {
		for _, candidate := range candidates {
			if b, ok := t.backends[candidate]; ok && b.Available() {
				return b, nil
			}
		}
		return nil, &NotFoundError{Name: name}
	}

	return nil, &NotFoundError{Name: name}
}
