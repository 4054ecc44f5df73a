package types

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Validate checks the declared resource requests parse as quantities,
// e.g. cpu: "4", memory: "16Gi".
func (c ModelConfig) Validate() error {
	for name, val := range c.Resources {
		if _, err := resource.ParseQuantity(val); err != nil {
			return fmt.Errorf("resource %s=%q: %w", name, val, err)
		}
	}
	return nil
}
