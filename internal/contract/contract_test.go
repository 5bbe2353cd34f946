package contract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContract(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validYAML = `
confidence_cap: 0.95
max_steps: 16
fatigue_penalty: 0.1
falsified_ceiling: 0.3
adjustment_limit: 0.25
shadow_ttl: 2
entropy_floor: 0.5
accept_ceiling: 0.85
divergence_threshold: 0.5
reject_validity_threshold: 0.8
quorum: 3
jurisdictions:
  ontological: 0.35
  practical: 0.40
  epistemic: 0.25
modules:
  empiricist: ontological
  skeptic: epistemic
  deontic: practical
  monist: ontological
order: [empiricist, skeptic, deontic, monist]
`

func TestLoad_Valid(t *testing.T) {
	c, err := Load(writeContract(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 0.95, c.ConfidenceCap)
	assert.Equal(t, 3, c.Quorum)
	assert.Equal(t, []string{"empiricist", "skeptic", "deontic", "monist"}, c.Order)
}

func TestLoad_WeightsMustSumToOne(t *testing.T) {
	bad := `
confidence_cap: 0.95
max_steps: 16
fatigue_penalty: 0.1
falsified_ceiling: 0.3
adjustment_limit: 0.25
shadow_ttl: 2
entropy_floor: 0.5
accept_ceiling: 0.85
divergence_threshold: 0.5
reject_validity_threshold: 0.8
quorum: 2
jurisdictions:
  ontological: 0.35
  practical: 0.40
  epistemic: 0.40
modules:
  empiricist: ontological
  skeptic: epistemic
order: [empiricist, skeptic]
`
	_, err := Load(writeContract(t, bad))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Reason, "sum")
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	c := Default()
	c.DivergenceThreshold = 1.2
	err := c.Validate()
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Reason, "divergence_threshold")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestValidate_ModuleWithoutJurisdiction(t *testing.T) {
	c := Default()
	c.Order = append(c.Order, "pragmatist")
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pragmatist")
}

func TestValidate_QuorumBounds(t *testing.T) {
	c := Default()
	c.Quorum = 5
	require.Error(t, c.Validate())

	c = Default()
	c.Quorum = 0
	require.Error(t, c.Validate())
}

func TestValidate_EntropyFloorAboveCeiling(t *testing.T) {
	c := Default()
	c.EntropyFloor = 0.9
	c.AcceptCeiling = 0.8
	require.Error(t, c.Validate())
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestModuleWeight_SplitsJurisdictionAcrossPeers(t *testing.T) {
	c := Default()

	// ontological 0.35 split between empiricist and monist.
	assert.InDelta(t, 0.175, c.ModuleWeight("empiricist"), 1e-9)
	assert.InDelta(t, 0.175, c.ModuleWeight("monist"), 1e-9)
	assert.InDelta(t, 0.40, c.ModuleWeight("deontic"), 1e-9)
	assert.InDelta(t, 0.25, c.ModuleWeight("skeptic"), 1e-9)
	assert.Zero(t, c.ModuleWeight("unknown"))
}
