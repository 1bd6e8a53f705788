package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// StoredCredential is one user-configured instance of a credential type.
// Values are kept in plaintext; encrypting them is the host's job.
type StoredCredential struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

type Credentials struct {
	Entries map[string]StoredCredential `json:"credentials"` // credential ID → entry
}

func (c Credentials) Get(id string) (StoredCredential, bool) {
	cred, ok := c.Entries[id]
	return cred, ok
}

func (c Credentials) IDs() []string {
	ids := lo.Keys(c.Entries)
	slices.Sort(ids)
	return ids
}

// credMu guards read-modify-write cycles on the credentials file.
var credMu sync.Mutex

func CredentialsPath() string {
	return filepath.Join(ConfigDir(), "credentials.json")
}

func LoadCredentialsFrom(path string) (Credentials, error) {
	creds := Credentials{Entries: make(map[string]StoredCredential)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return creds, nil
		}
		return creds, fmt.Errorf("reading credentials: %w", err)
	}

	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{Entries: make(map[string]StoredCredential)}, fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	if creds.Entries == nil {
		creds.Entries = make(map[string]StoredCredential)
	}
	for id, cred := range creds.Entries {
		if cred.Data == nil {
			cred.Data = make(map[string]string)
			creds.Entries[id] = cred
		}
	}

	return creds, nil
}

// SaveCredentialTo stores cred under id, replacing any previous entry.
func SaveCredentialTo(path, id string, cred StoredCredential) error {
	if id == "" {
		return fmt.Errorf("saving credential: empty id")
	}
	if cred.Type == "" {
		return fmt.Errorf("saving credential %q: empty type", id)
	}

	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		return err
	}

	cred.Data = maps.Clone(cred.Data)
	if cred.Data == nil {
		cred.Data = make(map[string]string)
	}
	creds.Entries[id] = cred

	return writeCredentials(path, creds)
}

func DeleteCredentialFrom(path, id string) error {
	credMu.Lock()
	defer credMu.Unlock()

	creds, err := LoadCredentialsFrom(path)
	if err != nil {
		return err
	}
	if _, ok := creds.Entries[id]; !ok {
		return fmt.Errorf("credential %q not found", id)
	}

	delete(creds.Entries, id)

	return writeCredentials(path, creds)
}

func writeCredentials(path string, creds Credentials) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	// Write to a sibling file and rename so watchers never see a partial file.
	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}
