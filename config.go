package except

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-except/except/audit"
	"github.com/go-except/except/flowctx"
	"github.com/go-except/except/trap"
)

// Config holds the process-wide knobs this runtime leaves to the host:
// single- vs multi-flow context storage, shared-vs-per-flow signal
// handling, and
// debug-auditor on/off. Loadable from YAML via gopkg.in/yaml.v3, the same
// way the conformance package's suites are.
type Config struct {
	SingleFlow  bool `yaml:"single_flow"`
	SharedTraps bool `yaml:"shared_traps"`
	Audit       bool `yaml:"audit"`
}

// DefaultConfig matches the original library's default build: one static
// context slot, process-wide shared signal handlers, auditing off.
func DefaultConfig() Config {
	return Config{SingleFlow: true, SharedTraps: true, Audit: false}
}

// LoadConfig reads a YAML file into a Config, starting from DefaultConfig
// so an omitted field keeps its default rather than zeroing out.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Apply wires cfg into the flowctx, trap and audit packages. Intended to
// be called once during process setup, before any flow enters a Try.
func (cfg Config) Apply() {
	flowctx.SetSingleFlow(cfg.SingleFlow)
	if cfg.SharedTraps {
		trap.SetMode(trap.Shared)
	} else {
		trap.SetMode(trap.PerFlow)
	}
	audit.Enabled = cfg.Audit
}
