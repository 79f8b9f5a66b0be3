package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trendpulse/internal/domain/trend"
)

// AccountsDocument is the YAML layout of an accounts file. Lists are used
// throughout so category and keyword order survives decoding.
type AccountsDocument struct {
	Accounts []AccountEntry `yaml:"accounts"`
}

// AccountEntry is one tracked account in an accounts file
type AccountEntry struct {
	Username   string                   `yaml:"username"`
	Weight     float64                  `yaml:"weight"`
	Categories []trend.CategoryKeywords `yaml:"categories"`
}

// DefaultAccounts returns the stock tracked accounts
func DefaultAccounts() []trend.AccountConfig {
	categories := []trend.CategoryKeywords{
		{Name: "AI", Keywords: []string{"ai", "artificial intelligence", "machine learning", "ml", "llm", "gpt", "agents", "autonomous"}},
		{Name: "Crypto", Keywords: []string{"crypto", "blockchain", "web3", "defi", "nft"}},
		{Name: "Solana", Keywords: []string{"solana", "sol", "saga", "firedancer", "bonk"}},
		{Name: "AI x Crypto", Keywords: []string{"ai crypto", "ai trading", "ai blockchain", "ai agents", "autonomous agents"}},
	}

	entries := []AccountEntry{
		{Username: "IrffanAsiff", Weight: 1.2, Categories: categories},
		{Username: "yashhsm", Weight: 1.1, Categories: categories},
		{Username: "0xMert_", Weight: 1.2, Categories: categories},
	}

	accounts, err := buildAccounts(entries)
	if err != nil {
		panic(fmt.Sprintf("invalid default accounts: %v", err))
	}
	return accounts
}

// LoadAccountsFile reads tracked accounts from a YAML file
func LoadAccountsFile(path string) ([]trend.AccountConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	return ParseAccounts(data)
}

// ParseAccounts decodes and validates a YAML accounts document
func ParseAccounts(data []byte) ([]trend.AccountConfig, error) {
	var doc AccountsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse accounts: %w", err)
	}
	return buildAccounts(doc.Accounts)
}

func buildAccounts(entries []AccountEntry) ([]trend.AccountConfig, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no accounts configured")
	}

	accounts := make([]trend.AccountConfig, 0, len(entries))
	for _, e := range entries {
		acc, err := trend.NewAccountConfig(e.Username, e.Categories, e.Weight)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err := ValidateAccounts(accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ValidateAccounts checks that the account set is usable as a whole
func ValidateAccounts(accounts []trend.AccountConfig) error {
	if len(accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}

	seen := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		if seen[acc.Username()] {
			return fmt.Errorf("duplicate account %q", acc.Username())
		}
		seen[acc.Username()] = true
	}
	return nil
}
