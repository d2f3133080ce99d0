package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen/registry"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/store"
)

// Database verifies the store can serve a state write and read.
func Database(st store.StateStore) Probe {
	return Probe{
		Name:     "database",
		Critical: true,
		Check: func(ctx context.Context) error {
			stamp := time.Now().UTC().Format(time.RFC3339)
			if err := st.SetState(ctx, "probe.startup", stamp); err != nil {
				return err
			}
			got, ok := st.GetState(ctx, "probe.startup")
			if !ok || got != stamp {
				return fmt.Errorf("state readback mismatch: %q", got)
			}
			return nil
		},
	}
}

// Capability verifies at least one configured provider can serve the
// capability. Every capability has a deterministic fallback, so these are
// never critical; an empty chain just means fallback-only output.
func Capability(reg *registry.Registry, capability gen.Capability) Probe {
	return Probe{
		Name: "providers/" + string(capability),
		Check: func(ctx context.Context) error {
			if len(reg.Ordered(capability)) == 0 {
				return fmt.Errorf("no configured provider, fallback only")
			}
			return nil
		},
	}
}

// All builds the standard startup probe set.
func All(st store.StateStore, reg *registry.Registry) []Probe {
	return []Probe{
		Database(st),
		Capability(reg, gen.CapText),
		Capability(reg, gen.CapEnhance),
		Capability(reg, gen.CapImage),
		Capability(reg, gen.CapAudio),
	}
}
