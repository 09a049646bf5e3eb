package discord

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
)

// PolicyStore resolves per-guild moderation policies. Overrides come from a
// JSON file mapping guild ID to a FULL policy document: an entry replaces
// the defaults wholesale, so a policy that omits a field gets that field's
// zero value, not the default. Duration fields serialize as integer
// nanoseconds (encoding/json's representation of time.Duration); the
// easiest way to author an override is to marshal DefaultPolicy and edit
// the result. Guilds without an entry get the base policy.
type PolicyStore struct {
	mu        sync.RWMutex
	path      string
	base      automod.GuildPolicy
	overrides map[string]automod.GuildPolicy
}

// LoadPolicyStore reads the overrides file at path. An empty path yields a
// store that always returns the base policy.
func LoadPolicyStore(path string) (*PolicyStore, error) {
	ps := &PolicyStore{
		path:      path,
		base:      automod.DefaultPolicy(),
		overrides: make(map[string]automod.GuildPolicy),
	}
	if path == "" {
		return ps, nil
	}
	if err := ps.Reload(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Reload re-reads the overrides file, replacing the current set atomically.
func (ps *PolicyStore) Reload() error {
	raw, err := os.ReadFile(ps.path)
	if err != nil {
		return fmt.Errorf("reading policy file: %w", err)
	}
	overrides := make(map[string]automod.GuildPolicy)
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parsing policy file %s: %w", ps.path, err)
	}
	for guildID, policy := range overrides {
		policy.GuildID = guildID
		overrides[guildID] = policy
	}
	ps.mu.Lock()
	ps.overrides = overrides
	ps.mu.Unlock()
	return nil
}

// SetBase replaces the policy handed to guilds with no override, for
// host-level defaults such as a shared banned-word list.
func (ps *PolicyStore) SetBase(policy automod.GuildPolicy) {
	ps.mu.Lock()
	ps.base = policy
	ps.mu.Unlock()
}

// Get returns the policy for a guild.
func (ps *PolicyStore) Get(guildID string) automod.GuildPolicy {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if policy, ok := ps.overrides[guildID]; ok {
		return policy
	}
	policy := ps.base
	policy.GuildID = guildID
	return policy
}

// Set replaces one guild's policy in memory. Used by tests and admin tooling;
// it does not write the file back.
func (ps *PolicyStore) Set(guildID string, policy automod.GuildPolicy) {
	policy.GuildID = guildID
	ps.mu.Lock()
	ps.overrides[guildID] = policy
	ps.mu.Unlock()
}
