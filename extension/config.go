package extension

import "time"

// Config holds the Market extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.market" or "market" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// ProtocolFeeRate is the stored fee rate applied against the fee
	// denominator (default: 20, i.e. 5%).
	ProtocolFeeRate int64 `json:"protocol_fee_rate" mapstructure:"protocol_fee_rate" yaml:"protocol_fee_rate"`

	// MinimalHold is the shortest accepted occupancy in seconds
	// (default: 86400).
	MinimalHold int64 `json:"minimal_hold" mapstructure:"minimal_hold" yaml:"minimal_hold"`

	// SweepInterval is how often the overtime monitor scans active
	// occupancies (default: 1m).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// ConsentDomainName and friends pin the consent signature domain.
	ConsentDomainName     string `json:"consent_domain_name" mapstructure:"consent_domain_name" yaml:"consent_domain_name"`
	ConsentDomainVersion  string `json:"consent_domain_version" mapstructure:"consent_domain_version" yaml:"consent_domain_version"`
	ConsentDomainChainID  uint64 `json:"consent_domain_chain_id" mapstructure:"consent_domain_chain_id" yaml:"consent_domain_chain_id"`
	ConsentDomainContract string `json:"consent_domain_contract" mapstructure:"consent_domain_contract" yaml:"consent_domain_contract"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProtocolFeeRate:      20,
		MinimalHold:          86400,
		SweepInterval:        time.Minute,
		ConsentDomainName:    "market",
		ConsentDomainVersion: "1",
	}
}
