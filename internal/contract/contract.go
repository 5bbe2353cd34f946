package contract

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadError reports an invalid or unreadable contract. It is fatal at
// startup: no adjudication proceeds without a valid contract.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string { return "contract: " + e.Reason }

func loadErrorf(format string, args ...any) *LoadError {
	return &LoadError{Reason: fmt.Sprintf(format, args...)}
}

// Contract is the frozen adjudication configuration. It is loaded once
// and treated as immutable data for the lifetime of the process.
type Contract struct {
	// Per-module traversal bounds.
	ConfidenceCap  float64 `yaml:"confidence_cap"`
	MaxSteps       int     `yaml:"max_steps"`
	FatiguePenalty float64 `yaml:"fatigue_penalty"`

	// Judgment invariants.
	FalsifiedCeiling float64 `yaml:"falsified_ceiling"`

	// Shadow channel bounds.
	AdjustmentLimit float64 `yaml:"adjustment_limit"`
	ShadowTTL       int     `yaml:"shadow_ttl"`

	// Decision thresholds.
	EntropyFloor            float64 `yaml:"entropy_floor"`
	AcceptCeiling           float64 `yaml:"accept_ceiling"`
	DivergenceThreshold     float64 `yaml:"divergence_threshold"`
	RejectValidityThreshold float64 `yaml:"reject_validity_threshold"`
	Quorum                  int     `yaml:"quorum"`

	// Jurisdiction weights (must sum to 1.0) and the module roster.
	// Order is the fixed orchestration order; every listed module must
	// map to a known jurisdiction.
	Jurisdictions map[string]float64 `yaml:"jurisdictions"`
	Modules       map[string]string  `yaml:"modules"`
	Order         []string           `yaml:"order"`
}

// Load reads and validates a contract file. Any failure is a *LoadError.
func Load(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErrorf("read %s: %v", path, err)
	}

	var c Contract
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, loadErrorf("parse %s: %v", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every contract invariant. It returns a *LoadError on
// the first violation found.
func (c *Contract) Validate() error {
	unit := []struct {
		name  string
		value float64
	}{
		{"confidence_cap", c.ConfidenceCap},
		{"fatigue_penalty", c.FatiguePenalty},
		{"falsified_ceiling", c.FalsifiedCeiling},
		{"adjustment_limit", c.AdjustmentLimit},
		{"entropy_floor", c.EntropyFloor},
		{"accept_ceiling", c.AcceptCeiling},
		{"divergence_threshold", c.DivergenceThreshold},
		{"reject_validity_threshold", c.RejectValidityThreshold},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			return loadErrorf("%s = %v outside [0,1]", u.name, u.value)
		}
	}

	if c.EntropyFloor > c.AcceptCeiling {
		return loadErrorf("entropy_floor %v exceeds accept_ceiling %v", c.EntropyFloor, c.AcceptCeiling)
	}
	if c.MaxSteps < 1 {
		return loadErrorf("max_steps must be >= 1, got %d", c.MaxSteps)
	}
	if c.ShadowTTL < 1 {
		return loadErrorf("shadow_ttl must be >= 1, got %d", c.ShadowTTL)
	}
	if len(c.Order) == 0 {
		return loadErrorf("module order is empty")
	}
	if c.Quorum < 1 || c.Quorum > len(c.Order) {
		return loadErrorf("quorum %d outside [1,%d]", c.Quorum, len(c.Order))
	}

	seen := make(map[string]bool, len(c.Order))
	for _, id := range c.Order {
		if seen[id] {
			return loadErrorf("module %q listed twice in order", id)
		}
		seen[id] = true

		jurisdiction, ok := c.Modules[id]
		if !ok {
			return loadErrorf("module %q has no jurisdiction mapping", id)
		}
		if _, ok := c.Jurisdictions[jurisdiction]; !ok {
			return loadErrorf("module %q maps to unknown jurisdiction %q", id, jurisdiction)
		}
	}

	var sum float64
	for name, w := range c.Jurisdictions {
		if w < 0 || w > 1 {
			return loadErrorf("jurisdiction %q weight %v outside [0,1]", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return loadErrorf("jurisdiction weights sum to %v, want 1.0", sum)
	}

	return nil
}

// ModuleWeight returns a module's share of its jurisdiction weight: the
// jurisdiction weight split evenly across the modules mapped into it.
// Unknown modules weigh zero.
func (c *Contract) ModuleWeight(moduleID string) float64 {
	jurisdiction, ok := c.Modules[moduleID]
	if !ok {
		return 0
	}
	var peers int
	for _, j := range c.Modules {
		if j == jurisdiction {
			peers++
		}
	}
	if peers == 0 {
		return 0
	}
	return c.Jurisdictions[jurisdiction] / float64(peers)
}

// Default returns the canonical contract used when no file is supplied.
func Default() *Contract {
	return &Contract{
		ConfidenceCap:           0.95,
		MaxSteps:                16,
		FatiguePenalty:          0.10,
		FalsifiedCeiling:        0.30,
		AdjustmentLimit:         0.25,
		ShadowTTL:               2,
		EntropyFloor:            0.50,
		AcceptCeiling:           0.85,
		DivergenceThreshold:     0.50,
		RejectValidityThreshold: 0.80,
		Quorum:                  3,
		Jurisdictions: map[string]float64{
			"ontological": 0.35,
			"practical":   0.40,
			"epistemic":   0.25,
		},
		Modules: map[string]string{
			"empiricist": "ontological",
			"skeptic":    "epistemic",
			"deontic":    "practical",
			"monist":     "ontological",
		},
		Order: []string{"empiricist", "skeptic", "deontic", "monist"},
	}
}
