// Package builtin registers the primitive node kinds and the built-in decision,
// risk and opportunity rules.
package builtin

import (
	"fmt"

	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/threshold"
)

// DefaultEstimators are the weights of the risk ensemble used by 'blend'
// nodes that do not configure their own.
var DefaultEstimators = map[string]float64{
	catalog.EstimatorLGBM: 0.4,
	catalog.EstimatorRF:   0.3,
	catalog.EstimatorMI:   0.3,
}

// Options customize the primitives registered by NewRegistry.
type Options struct {
	// Tables used by the category roots and 'clamp'. Missing tables fall back to the defaults.
	Tables threshold.Set

	// Estimators are the default weights for 'blend'.
	Estimators map[string]float64
}

func (o Options) withDefaults() Options {
	tables := threshold.Defaults()
	for t, tbl := range o.Tables {
		tables[t] = tbl
	}
	o.Tables = tables
	if len(o.Estimators) == 0 {
		o.Estimators = DefaultEstimators
	}
	return o
}

// Register adds all primitive specs to reg.
func Register(reg *node.Registry, opts Options) error {
	opts = opts.withDefaults()

	categories, err := categorySpecs(opts.Tables)
	if err != nil {
		return err
	}

	var specs []node.Spec
	specs = append(specs, terminalSpecs(opts)...)
	specs = append(specs, arithmeticSpecs(opts.Tables)...)
	specs = append(specs, logicSpecs()...)
	specs = append(specs, categories...)

	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return fmt.Errorf("registering built-in node '%s': %w", spec.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a frozen registry containing all primitives.
func NewRegistry(opts Options) (*node.Registry, error) {
	reg := node.NewRegistry()
	if err := Register(reg, opts); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}
