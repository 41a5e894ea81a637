package user

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// Generator produces candidate display names for Acquire.
type Generator func() (string, error)

// Registry tracks the display names held by connected sessions and arbitrates uniqueness.
// All methods are safe for concurrent use; the lock is held only for the map operation.
type Registry struct {
	// names is the set of held names.
	names map[string]struct{}

	// generate produces candidates when no preferred name is given.
	generate Generator

	// mu protects names.
	mu sync.Mutex

	logger zerolog.Logger
}

// NewRegistry returns an empty Registry that generates names with randx.DisplayName.
func NewRegistry() *Registry {
	return NewRegistryWithGenerator(randx.DisplayName)
}

// NewRegistryWithGenerator returns an empty Registry that generates names with gen.
func NewRegistryWithGenerator(gen Generator) *Registry {
	return &Registry{
		names:    make(map[string]struct{}),
		generate: gen,
		logger:   logx.Component("NameRegistry"),
	}
}

// Acquire reserves a display name. An empty preferred name means "any name": candidates
// are generated until an unused one is found. An explicit name is validated and fails
// with ErrNameInUse when another session holds it.
func (reg *Registry) Acquire(preferred string) (string, *errs.CustomError) {
	if preferred != "" {
		if err := ValidateName(preferred); err != nil {
			return "", err
		}
		if !reg.tryInsert(preferred) {
			return "", errs.NewError(errs.ErrNameInUse)
		}
		return preferred, nil
	}

	for attempt := 1; ; attempt++ {
		candidate, err := reg.generate()
		if err != nil {
			return "", errs.NewError(errs.ErrUnknown, err)
		}
		if reg.tryInsert(candidate) {
			if attempt > 1 {
				reg.logger.Debug().Int("attempts", attempt).Str("name", candidate).Msg("Generated name after collisions.")
			}
			return candidate, nil
		}
	}
}

// Generate returns a fresh candidate name without reserving it. Callers reserve it with
// Acquire or Rename and retry on ErrNameInUse.
func (reg *Registry) Generate() (string, *errs.CustomError) {
	candidate, err := reg.generate()
	if err != nil {
		return "", errs.NewError(errs.ErrUnknown, err)
	}
	return candidate, nil
}

func (reg *Registry) tryInsert(name string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, held := reg.names[name]; held {
		return false
	}
	reg.names[name] = struct{}{}
	return true
}

// Release frees name. Releasing a name that is not held is a no-op.
func (reg *Registry) Release(name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.names, name)
}

// Rename atomically swaps oldName for newName. It fails with ErrNameInUse when newName is
// held by someone else and leaves oldName held in that case. Renaming to the same name is a
// no-op. A caller renaming a name it does not hold gets ErrInternalState.
//
// commit, when non-nil, runs under the registry lock after the checks pass and before the
// swap. Its error aborts the rename with oldName still held and newName free. Callers use it
// to re-key state indexed by the name, such as room membership, so no other session can take
// oldName while that state still refers to it. commit must not call back into the Registry.
func (reg *Registry) Rename(oldName, newName string, commit func() *errs.CustomError) *errs.CustomError {
	if err := ValidateName(newName); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, held := reg.names[oldName]; !held {
		reg.logger.Error().Str("old_name", oldName).Str("new_name", newName).Msg("Rename of a name that is not held.")
		return errs.NewError(errs.ErrInternalState)
	}

	if oldName == newName {
		return nil
	}

	if _, taken := reg.names[newName]; taken {
		return errs.NewError(errs.ErrNameInUse)
	}

	if commit != nil {
		if err := commit(); err != nil {
			return err
		}
	}

	delete(reg.names, oldName)
	reg.names[newName] = struct{}{}
	return nil
}

// Contains reports whether name is currently held.
func (reg *Registry) Contains(name string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	_, held := reg.names[name]
	return held
}

// Len returns the number of held names.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.names)
}

// List returns a sorted snapshot of all held names.
func (reg *Registry) List() []string {
	reg.mu.Lock()
	names := make([]string, 0, len(reg.names))
	for name := range reg.names {
		names = append(names, name)
	}
	reg.mu.Unlock()

	slices.Sort(names)
	return names
}
