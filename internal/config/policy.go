package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// BadgeTier maps an approved-missions count to a badge level. Tiers are
// presentation policy: they never influence merge semantics.
type BadgeTier struct {
	Tier                int    `yaml:"tier"`
	Name                string `yaml:"name"`
	MinApprovedMissions int    `yaml:"min_approved_missions"`
}

// Policy is the trimming and badge policy loaded from YAML.
type Policy struct {
	SoftMaxEntriesPerProfile int         `yaml:"soft_max_entries_per_profile"`
	HardMaxEntriesPerProfile int         `yaml:"hard_max_entries_per_profile"`
	SoftSizeBytes            int64       `yaml:"soft_size_bytes"`
	BadgeTiers               []BadgeTier `yaml:"badge_tiers"`
}

// DefaultPolicy is used when no policy file is configured or present.
func DefaultPolicy() Policy {
	return Policy{
		SoftMaxEntriesPerProfile: 500,
		HardMaxEntriesPerProfile: 250,
		SoftSizeBytes:            2 << 20,
		BadgeTiers: []BadgeTier{
			{Tier: 1, Name: "sprout", MinApprovedMissions: 5},
			{Tier: 2, Name: "saver", MinApprovedMissions: 25},
			{Tier: 3, Name: "champion", MinApprovedMissions: 100},
		},
	}
}

// LoadPolicy reads the policy file, falling back to defaults when the file
// does not exist.
func LoadPolicy(policyFile string) (Policy, error) {
	var policyPath string
	if filepath.IsAbs(policyFile) {
		policyPath = policyFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return Policy{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		policyPath = filepath.Join(wd, policyFile)
	}

	data, err := os.ReadFile(policyPath)
	if os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("unable to read %s: %w", policyFile, err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("unable to parse %s: %w", policyFile, err)
	}

	if policy.SoftMaxEntriesPerProfile <= 0 {
		return Policy{}, fmt.Errorf("soft_max_entries_per_profile must be positive")
	}
	if policy.HardMaxEntriesPerProfile <= 0 || policy.HardMaxEntriesPerProfile > policy.SoftMaxEntriesPerProfile {
		return Policy{}, fmt.Errorf("hard_max_entries_per_profile must be positive and at most the soft cap")
	}

	return policy, nil
}

// TierFor returns the highest badge tier earned for an approved-missions
// count, or 0 when none is reached.
func (p Policy) TierFor(approvedMissions int) int {
	tier := 0
	for _, bt := range p.BadgeTiers {
		if approvedMissions >= bt.MinApprovedMissions && bt.Tier > tier {
			tier = bt.Tier
		}
	}
	return tier
}
