package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

// credentialsFile is the on-disk name of the encrypted credential file.
const credentialsFile = "credentials.enc"

// scrypt parameters for key derivation.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// CredentialStore holds server-side fallback API keys by service name
// ("OpenAI", "Anthropic"). These are the deployment's own keys, used only
// when a request carries no key and the user has none stored; per-user keys
// live in the database.
//
// The file is AES-GCM encrypted with a key derived from a passphrase, so a
// leaked data directory does not leak provider credentials.
type CredentialStore struct {
	passphrase  string
	credentials map[string]string
}

// NewCredentialStore creates an empty store.
func NewCredentialStore(passphrase string) *CredentialStore {
	return &CredentialStore{
		passphrase:  passphrase,
		credentials: make(map[string]string),
	}
}

// Get retrieves a credential for a service, or "" when none is stored.
func (c *CredentialStore) Get(serviceName string) string {
	return c.credentials[serviceName]
}

// Set stores a credential for a service.
func (c *CredentialStore) Set(serviceName, apiKey string) {
	c.credentials[serviceName] = apiKey
}

// Load reads and decrypts the credential file from dataDir. A missing file
// leaves the store empty and is not an error.
func (c *CredentialStore) Load(dataDir string) error {
	path := filepath.Join(dataDir, credentialsFile)

	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	if len(blob) < saltLen {
		return fmt.Errorf("credentials file is truncated")
	}
	salt, ciphertext := blob[:saltLen], blob[saltLen:]

	key, err := c.deriveKey(salt)
	if err != nil {
		return err
	}

	plaintext, err := decryptAESGCM(ciphertext, key)
	if err != nil {
		return fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	creds := make(map[string]string)
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}

	c.credentials = creds
	return nil
}

// Save encrypts and writes the credential file to dataDir.
func (c *CredentialStore) Save(dataDir string) error {
	plaintext, err := json.Marshal(c.credentials)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := c.deriveKey(salt)
	if err != nil {
		return err
	}

	ciphertext, err := encryptAESGCM(plaintext, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, credentialsFile)
	if err := os.WriteFile(path, append(salt, ciphertext...), 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

func (c *CredentialStore) deriveKey(salt []byte) ([]byte, error) {
	if c.passphrase == "" {
		return nil, fmt.Errorf("credential passphrase is not set")
	}

	key, err := scrypt.Key([]byte(c.passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func encryptAESGCM(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptAESGCM(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
