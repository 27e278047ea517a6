package health

import (
	"context"
	"fmt"
	"time"
)

// SchemaSet is the view of the schema manager the readiness check needs.
type SchemaSet interface {
	LastLoadTime() time.Time
	LastLoadError() error
}

// counter is implemented by registries that can report their size.
type counter interface {
	Count() int
}

// SchemaCheck fails until the first successful schema load. Once schemas are
// loaded a failed reload does not make the service unready, since the
// previous set keeps serving.
func SchemaCheck(set SchemaSet, schemas counter) CheckFunc {
	return func(context.Context) error {
		if set.LastLoadTime().IsZero() {
			if err := set.LastLoadError(); err != nil {
				return fmt.Errorf("schemas not loaded: %w", err)
			}
			return fmt.Errorf("schemas not loaded")
		}
		if schemas != nil && schemas.Count() == 0 {
			return fmt.Errorf("no schemas registered")
		}
		return nil
	}
}
