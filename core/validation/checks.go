package validation

import (
	"fmt"

	"imagestudio/catalog"
	"imagestudio/core"
)

// EnvFileCheck warns when the .env file at path is missing. Variables may
// still come from the shell, so a missing file never fails startup.
func EnvFileCheck(path string) Check {
	return Check{
		Name: "Environment File",
		Run: func() Outcome {
			if err := CheckFileExists(path); err != nil {
				return Warn("Using process environment only", err)
			}
			return Pass(fmt.Sprintf("Loaded %s", path))
		},
	}
}

// ProviderCheck reports the configured inference provider and model.
func ProviderCheck(cfg *core.Config) Check {
	return Check{
		Name: "Inference Provider",
		Run: func() Outcome {
			return Pass(fmt.Sprintf("%s, model %s", cfg.Provider, cfg.ModelName))
		},
	}
}

// CredentialCheck fails when the provider credential is missing. The error
// is the *core.ConfigError carrying the setup steps.
func CredentialCheck(cfg *core.Config) Check {
	return Check{
		Name: "API Credential",
		Run: func() Outcome {
			if cerr := cfg.CredentialError(); cerr != nil {
				return Fail(cfg.CredentialVariable()+" is not set", cerr)
			}
			return Pass(cfg.CredentialVariable() + " is set")
		},
	}
}

// EndpointCheck validates the inference base URL. Gemini without an override
// uses the SDK's endpoint and is skipped.
func EndpointCheck(cfg *core.Config) Check {
	return Check{
		Name: "Inference Endpoint",
		Run: func() Outcome {
			if cfg.InferenceBaseURL == "" && cfg.Provider == core.ProviderGemini {
				return Skip("Using the Gemini API default endpoint")
			}
			if err := ValidateEndpointURL(cfg.InferenceBaseURL); err != nil {
				return Fail(cfg.InferenceBaseURL, err)
			}
			return Pass(cfg.InferenceBaseURL)
		},
	}
}

// CatalogCheck reports the loaded styles, sizes and prompts.
func CatalogCheck(cat *catalog.Catalog, source string) Check {
	return Check{
		Name: "Style Catalog",
		Run: func() Outcome {
			if source == "" {
				source = "built-in"
			}
			return Pass(fmt.Sprintf("%d styles, %d sizes, %d prompts (%s)",
				len(cat.Styles.Names()), len(cat.Sizes.Labels()), cat.Prompts.Len(), source))
		},
	}
}

// AuditStorageCheck warns when the audit database's filesystem is low on
// space. It is skipped when auditing is disabled.
func AuditStorageCheck(cfg *core.Config) Check {
	return Check{
		Name: "Audit Database",
		Run: func() Outcome {
			if !cfg.AuditEnabled() {
				return Skip("Disabled (set AUDIT_DB_PATH to enable)")
			}
			if err := CheckDiskSpace(cfg.AuditDBPath, MinAuditFreeBytes); err != nil {
				return Warn(cfg.AuditDBPath, err)
			}
			retention := "kept forever"
			if cfg.AuditRetentionDays > 0 {
				retention = fmt.Sprintf("kept %d days", cfg.AuditRetentionDays)
			}
			return Pass(fmt.Sprintf("%s, %s", cfg.AuditDBPath, retention))
		},
	}
}

// NewStartupSuite assembles the checks run before the server starts.
func NewStartupSuite(cfg *core.Config, cat *catalog.Catalog, envPath string) *ValidationSuite {
	return NewValidationSuite("Image Studio "+core.Version).Add(
		EnvFileCheck(envPath),
		ProviderCheck(cfg),
		CredentialCheck(cfg),
		EndpointCheck(cfg),
		CatalogCheck(cat, cfg.CatalogFile),
		AuditStorageCheck(cfg),
	)
}
