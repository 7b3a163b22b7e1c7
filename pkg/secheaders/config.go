package secheaders

import "time"

// Config holds header values. Empty strings fall back to the defaults.
type Config struct {
	ContentSecurityPolicy string        `env:"SECHEADERS_CSP" envDefault:"default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"`
	ReferrerPolicy        string        `env:"SECHEADERS_REFERRER_POLICY" envDefault:"strict-origin-when-cross-origin"`
	PermissionsPolicy     string        `env:"SECHEADERS_PERMISSIONS_POLICY" envDefault:"camera=(), microphone=(), geolocation=(), payment=()"`
	HSTS                  bool          `env:"SECHEADERS_HSTS" envDefault:"false"`
	HSTSMaxAge            time.Duration `env:"SECHEADERS_HSTS_MAX_AGE" envDefault:"8760h"`
	HSTSIncludeSubdomains bool          `env:"SECHEADERS_HSTS_INCLUDE_SUBDOMAINS" envDefault:"true"`
}

const (
	DefaultContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"
	DefaultReferrerPolicy        = "strict-origin-when-cross-origin"
	DefaultPermissionsPolicy     = "camera=(), microphone=(), geolocation=(), payment=()"
	DefaultHSTSMaxAge            = 365 * 24 * time.Hour
)

func (c Config) withDefaults() Config {
	if c.ContentSecurityPolicy == "" {
		c.ContentSecurityPolicy = DefaultContentSecurityPolicy
	}
	if c.ReferrerPolicy == "" {
		c.ReferrerPolicy = DefaultReferrerPolicy
	}
	if c.PermissionsPolicy == "" {
		c.PermissionsPolicy = DefaultPermissionsPolicy
	}
	if c.HSTSMaxAge <= 0 {
		c.HSTSMaxAge = DefaultHSTSMaxAge
	}
	return c
}
