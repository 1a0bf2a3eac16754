package consent

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DomainFromEnv loads the consent domain from CONSENT_DOMAIN_*
// environment variables. Deployments that run several instances
// against one process set the domain per instance instead.
func DomainFromEnv() (Domain, error) {
	var d Domain
	if err := env.Parse(&d); err != nil {
		return Domain{}, fmt.Errorf("consent: parsing domain from environment: %w", err)
	}
	return d, nil
}
