package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "mailbrowse"

// PasswordEnv overrides the keyring lookup for IMAP passwords.
const PasswordEnv = "MAILBROWSE_IMAP_PASSWORD"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailbrowse/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailbrowse-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// IMAPKey returns the keyring key holding the password for an account.
func IMAPKey(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

// IMAPPassword returns the password for an account, preferring the
// environment over the keyring.
func IMAPPassword(username, host string) (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return Get(IMAPKey(username, host))
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}
