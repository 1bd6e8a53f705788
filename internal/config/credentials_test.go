package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maxCred(token string) StoredCredential {
	return StoredCredential{
		Type: "maxApi",
		Data: map[string]string{"accessToken": token, "baseUrl": "https://platform-api.max.ru"},
	}
}

func TestSaveAndLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	require.NoError(t, SaveCredentialTo(path, "max-prod", maxCred("tok-prod")))
	require.NoError(t, SaveCredentialTo(path, "max-staging", maxCred("tok-staging")))

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"max-prod", "max-staging"}, creds.IDs())
	got, ok := creds.Get("max-prod")
	require.True(t, ok)
	assert.Equal(t, maxCred("tok-prod"), got)
}

func TestDeleteCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, SaveCredentialTo(path, "a", maxCred("1")))
	require.NoError(t, SaveCredentialTo(path, "b", maxCred("2")))

	require.NoError(t, DeleteCredentialFrom(path, "a"))

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, creds.IDs())
}

func TestDeleteCredential_RequiresExactID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, SaveCredentialTo(path, "max-auto", maxCred("1")))

	err := DeleteCredentialFrom(path, "max")
	require.Error(t, err)

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"max-auto"}, creds.IDs())
}

func TestLoadCredentials_FileNotFound(t *testing.T) {
	creds, err := LoadCredentialsFrom(filepath.Join(t.TempDir(), "nonexistent", "credentials.json"))
	require.NoError(t, err)
	require.NotNil(t, creds.Entries)
	assert.Empty(t, creds.Entries)
}

func TestLoadCredentials_FillsNilData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"credentials":{"x":{"type":"maxApi"}}}`), 0o600))

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)
	got, ok := creds.Get("x")
	require.True(t, ok)
	assert.NotNil(t, got.Data)
}

func TestSaveCredential_CreatesDirAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "credentials.json")

	require.NoError(t, SaveCredentialTo(path, "max", maxCred("old")))
	require.NoError(t, SaveCredentialTo(path, "max", maxCred("new")))

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)
	got, _ := creds.Get("max")
	assert.Equal(t, "new", got.Data["accessToken"])

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".credentials-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveCredential_RejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	assert.Error(t, SaveCredentialTo(path, "", maxCred("x")))
	assert.Error(t, SaveCredentialTo(path, "max", StoredCredential{}))
}

func TestSaveCredential_CopiesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	cred := maxCred("tok")
	require.NoError(t, SaveCredentialTo(path, "max", cred))
	cred.Data["accessToken"] = "mutated"

	creds, err := LoadCredentialsFrom(path)
	require.NoError(t, err)
	got, _ := creds.Get("max")
	assert.Equal(t, "tok", got.Data["accessToken"])
}

func TestCredentialFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permission test not applicable on Windows")
	}

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, SaveCredentialTo(path, "max", maxCred("secret")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
