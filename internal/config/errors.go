package config

import "fmt"

// MissingCredentialError reports that a required secret is not configured
type MissingCredentialError struct {
	Name string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing required credential %s", e.Name)
}

// SerpAPIKeyEnv holds the key for the google source
const SerpAPIKeyEnv = "SERPAPI_API_KEY"

// RequireCredential returns a *MissingCredentialError when the provider's API key is empty,
// or when the google source is selected without a SerpAPI key.
func (c *Config) RequireCredential() error {
	if c.APIKey == "" {
		return &MissingCredentialError{Name: c.ProviderName().CredentialEnv()}
	}
	if c.Source == "google" && c.SerpAPIKey == "" {
		return &MissingCredentialError{Name: SerpAPIKeyEnv}
	}
	return nil
}
