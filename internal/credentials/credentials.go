// Package credentials resolves the account's plan tier from Claude Code's
// local credential and account files. Nothing here touches the network;
// when neither file is readable the tier is simply absent and the caller
// falls back to the default plan.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type oauthCredentials struct {
	ClaudeAiOauth *struct {
		SubscriptionType string `json:"subscriptionType"`
	} `json:"claudeAiOauth"`
}

type accountFile struct {
	OAuthAccount *struct {
		BillingType string `json:"billingType"`
	} `json:"oauthAccount"`
}

// CredentialsPath is where Claude Code keeps its OAuth credential blob on
// platforms without a keychain.
func CredentialsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", ".credentials.json")
}

// AccountPath is the top-level Claude Code account/config file.
func AccountPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude.json")
}

// LookupTier reads the subscription tier string from the credential file,
// falling back to the billing type in the account file. An empty string
// with nil error means "no tier recorded".
func LookupTier() (string, error) {
	return LookupTierFrom(CredentialsPath(), AccountPath())
}

func LookupTierFrom(credPath, accountPath string) (string, error) {
	if tier, err := tierFromCredentials(credPath); err == nil && tier != "" {
		return tier, nil
	}
	tier, err := tierFromAccount(accountPath)
	if err != nil {
		return "", err
	}
	return tier, nil
}

func tierFromCredentials(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading credentials: %w", err)
	}
	var creds oauthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	if creds.ClaudeAiOauth == nil {
		return "", nil
	}
	return creds.ClaudeAiOauth.SubscriptionType, nil
}

func tierFromAccount(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading account file: %w", err)
	}
	var acct accountFile
	if err := json.Unmarshal(data, &acct); err != nil {
		return "", fmt.Errorf("parsing account file %s: %w", path, err)
	}
	if acct.OAuthAccount == nil {
		return "", nil
	}
	return acct.OAuthAccount.BillingType, nil
}

// Cache memoizes a tier lookup for a TTL. Ownership is explicit: the
// caller holds the cache, and recomputing is always safe, so the TTL is an
// optimization only.
type Cache struct {
	mu      sync.Mutex
	lookup  func() (string, error)
	ttl     time.Duration
	now     func() time.Time
	tier    string
	fetched time.Time
	valid   bool
}

func NewCache(ttl time.Duration, lookup func() (string, error)) *Cache {
	if lookup == nil {
		lookup = LookupTier
	}
	return &Cache{lookup: lookup, ttl: ttl, now: time.Now}
}

// Tier returns the cached tier, refreshing it after the TTL. A failed
// refresh keeps any previous value rather than discarding it.
func (c *Cache) Tier() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetched) < c.ttl {
		return c.tier, nil
	}

	tier, err := c.lookup()
	if err != nil {
		if c.valid {
			return c.tier, nil
		}
		return "", err
	}

	c.tier = tier
	c.fetched = c.now()
	c.valid = true
	return tier, nil
}

// Invalidate drops the cached value so the next Tier call re-reads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
