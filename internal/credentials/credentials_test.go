package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLookupTierFrom_CredentialsFile(t *testing.T) {
	dir := t.TempDir()
	credPath := filepath.Join(dir, ".credentials.json")
	os.WriteFile(credPath, []byte(`{"claudeAiOauth":{"subscriptionType":"default_claude_max_5x"}}`), 0o600)

	tier, err := LookupTierFrom(credPath, filepath.Join(dir, ".claude.json"))
	if err != nil {
		t.Fatalf("LookupTierFrom failed: %v", err)
	}
	if tier != "default_claude_max_5x" {
		t.Errorf("tier = %q, want default_claude_max_5x", tier)
	}
}

func TestLookupTierFrom_FallsBackToAccountFile(t *testing.T) {
	dir := t.TempDir()
	acctPath := filepath.Join(dir, ".claude.json")
	os.WriteFile(acctPath, []byte(`{"oauthAccount":{"billingType":"pro"}}`), 0o644)

	tier, err := LookupTierFrom(filepath.Join(dir, "absent.json"), acctPath)
	if err != nil {
		t.Fatalf("LookupTierFrom failed: %v", err)
	}
	if tier != "pro" {
		t.Errorf("tier = %q, want pro", tier)
	}
}

func TestLookupTierFrom_NeitherReadable(t *testing.T) {
	dir := t.TempDir()
	_, err := LookupTierFrom(filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"))
	if err == nil {
		t.Error("expected error when neither source is readable")
	}
}

func TestLookupTierFrom_EmptyCredentialFallsThrough(t *testing.T) {
	dir := t.TempDir()
	credPath := filepath.Join(dir, ".credentials.json")
	acctPath := filepath.Join(dir, ".claude.json")
	os.WriteFile(credPath, []byte(`{"claudeAiOauth":{}}`), 0o600)
	os.WriteFile(acctPath, []byte(`{"oauthAccount":{"billingType":"max"}}`), 0o644)

	tier, err := LookupTierFrom(credPath, acctPath)
	if err != nil {
		t.Fatalf("LookupTierFrom failed: %v", err)
	}
	if tier != "max" {
		t.Errorf("tier = %q, want max", tier)
	}
}

func TestCache_MemoizesWithinTTL(t *testing.T) {
	calls := 0
	c := NewCache(time.Minute, func() (string, error) {
		calls++
		return "pro", nil
	})

	for i := 0; i < 3; i++ {
		tier, err := c.Tier()
		if err != nil {
			t.Fatalf("Tier failed: %v", err)
		}
		if tier != "pro" {
			t.Errorf("tier = %q, want pro", tier)
		}
	}
	if calls != 1 {
		t.Errorf("lookup calls = %d, want 1 within TTL", calls)
	}
}

func TestCache_RefreshesAfterTTL(t *testing.T) {
	calls := 0
	c := NewCache(time.Minute, func() (string, error) {
		calls++
		return "pro", nil
	})

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Tier()
	current = current.Add(2 * time.Minute)
	c.Tier()

	if calls != 2 {
		t.Errorf("lookup calls = %d, want 2 after TTL expiry", calls)
	}
}

func TestCache_KeepsStaleValueOnFailure(t *testing.T) {
	calls := 0
	c := NewCache(time.Minute, func() (string, error) {
		calls++
		if calls > 1 {
			return "", errors.New("credentials vanished")
		}
		return "max", nil
	})

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Tier()
	current = current.Add(2 * time.Minute)

	tier, err := c.Tier()
	if err != nil {
		t.Fatalf("expected stale value, got error: %v", err)
	}
	if tier != "max" {
		t.Errorf("tier = %q, want stale max", tier)
	}
}

func TestCache_Invalidate(t *testing.T) {
	calls := 0
	c := NewCache(time.Hour, func() (string, error) {
		calls++
		return "pro", nil
	})

	c.Tier()
	c.Invalidate()
	c.Tier()

	if calls != 2 {
		t.Errorf("lookup calls = %d, want 2 after Invalidate", calls)
	}
}
