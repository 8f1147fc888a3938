package validation

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imagestudio/catalog"
	"imagestudio/core"
)

func testConfig() *core.Config {
	return &core.Config{
		Provider:         core.ProviderHuggingFace,
		HuggingFaceToken: "hf_example",
		ModelName:        core.DefaultModelName,
		InferenceBaseURL: core.DefaultHuggingFaceURL,
	}
}

func TestEnvFileCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if got := EnvFileCheck(path).Run(); got.Status != StepWarning {
		t.Errorf("missing file status = %v, want warning", got.Status)
	}

	if err := os.WriteFile(path, []byte("HUGGINGFACE_TOKEN=x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := EnvFileCheck(path).Run(); got.Status != StepPassed {
		t.Errorf("existing file status = %v, want passed", got.Status)
	}
	if got := EnvFileCheck(dir).Run(); got.Status != StepWarning {
		t.Errorf("directory status = %v, want warning", got.Status)
	}
}

func TestCredentialCheck(t *testing.T) {
	cfg := testConfig()
	if got := CredentialCheck(cfg).Run(); got.Status != StepPassed {
		t.Errorf("status = %v, want passed", got.Status)
	}
	if got := CredentialCheck(cfg).Run(); strings.Contains(got.Message, "hf_example") {
		t.Error("credential value must not be printed")
	}

	cfg.HuggingFaceToken = ""
	got := CredentialCheck(cfg).Run()
	if got.Status != StepFailed {
		t.Fatalf("status = %v, want failed", got.Status)
	}
	cerr, ok := core.IsConfigError(got.Error)
	if !ok || cerr.Code != core.ErrCodeMissingAuth {
		t.Errorf("error = %v, want missing auth ConfigError", got.Error)
	}
}

func TestEndpointCheck(t *testing.T) {
	cfg := testConfig()
	if got := EndpointCheck(cfg).Run(); got.Status != StepPassed {
		t.Errorf("status = %v, want passed", got.Status)
	}

	cfg.InferenceBaseURL = "ftp://example.com"
	if got := EndpointCheck(cfg).Run(); got.Status != StepFailed {
		t.Errorf("ftp status = %v, want failed", got.Status)
	}

	cfg.Provider = core.ProviderGemini
	cfg.InferenceBaseURL = ""
	if got := EndpointCheck(cfg).Run(); got.Status != StepSkipped {
		t.Errorf("gemini default status = %v, want skipped", got.Status)
	}
}

func TestCatalogCheck(t *testing.T) {
	got := CatalogCheck(catalog.Default(), "").Run()
	if got.Status != StepPassed {
		t.Fatalf("status = %v", got.Status)
	}
	if !strings.Contains(got.Message, "16 styles, 5 sizes") || !strings.Contains(got.Message, "built-in") {
		t.Errorf("message = %q", got.Message)
	}
}

func TestAuditStorageCheck(t *testing.T) {
	cfg := testConfig()
	if got := AuditStorageCheck(cfg).Run(); got.Status != StepSkipped {
		t.Errorf("disabled status = %v, want skipped", got.Status)
	}

	cfg.AuditDBPath = filepath.Join(t.TempDir(), "nested", "audit.db")
	cfg.AuditRetentionDays = 7
	got := AuditStorageCheck(cfg).Run()
	var dsErr *DiskSpaceError
	switch {
	case got.Status == StepPassed:
		if !strings.Contains(got.Message, "kept 7 days") {
			t.Errorf("message = %q", got.Message)
		}
	case got.Status == StepWarning && errors.As(got.Error, &dsErr):
		// Test machine is nearly full
	default:
		t.Errorf("status = %v, error = %v", got.Status, got.Error)
	}
}

func TestNewStartupSuite_MissingCredential(t *testing.T) {
	cfg := testConfig()
	cfg.HuggingFaceToken = ""

	result := NewStartupSuite(cfg, catalog.Default(), filepath.Join(t.TempDir(), ".env")).
		WithShowProgress(false).
		Validate()

	if result.Success {
		t.Error("missing credential should fail the suite")
	}
	if result.TotalSteps != 6 {
		t.Errorf("TotalSteps = %d, want 6", result.TotalSteps)
	}
}

func TestPrintSetupInstructions(t *testing.T) {
	var buf bytes.Buffer
	PrintSetupInstructions(&buf, core.ErrMissingAuth(core.ProviderHuggingFace))

	out := buf.String()
	for _, want := range []string{
		"HuggingFace API token not found",
		"1. Go to https://huggingface.co/settings/tokens",
		"HUGGINGFACE_TOKEN=your_token_here",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintSetupInstructions(&buf, nil)
	if buf.Len() != 0 {
		t.Error("nil error should print nothing")
	}
}
