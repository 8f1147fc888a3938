package core

import "testing"

func TestGetVersionInfo(t *testing.T) {
	oldVersion, oldCommit, oldBuilt := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldBuilt })

	Version, GitCommit, BuildTime = "v1.2.0", "abc1234", "2026-01-15T10:30:00Z"

	want := "v1.2.0 (commit abc1234, built 2026-01-15T10:30:00Z)"
	if got := GetVersionInfo(); got != want {
		t.Errorf("GetVersionInfo() = %q, want %q", got, want)
	}
}

func TestGetVersionInfo_Defaults(t *testing.T) {
	if Version == "" || GitCommit == "" || BuildTime == "" {
		t.Error("build metadata must never be empty")
	}
}
