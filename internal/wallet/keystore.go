package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const keychainService = "krypton"

// ErrKeyNotFound is returned when a key reference has no stored key.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore keeps private keys outside the wallet file.
type KeyStore interface {
	Store(name, hexKey string) (ref string, err error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// KeystoreConfig selects the keychain backend.
type KeystoreConfig struct {
	// Dir holds the encrypted files of the file backend.
	Dir string
	// Password unlocks the file backend. Empty means prompt on the terminal.
	Password string
	// Backends restricts the allowed backends. Nil uses the platform
	// keychain with the file backend as fallback.
	Backends []keyring.BackendType
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// OpenKeystore opens the keychain described by cfg.
func OpenKeystore(cfg KeystoreConfig) (*Keystore, error) {
	kc := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  cfg.Dir,
		FilePasswordFunc:         terminalPrompt,
		AllowedBackends:          cfg.Backends,
	}
	if cfg.Password != "" {
		kc.FilePasswordFunc = keyring.FixedStringPrompt(cfg.Password)
	}

	// On Linux without a GUI, fall back to file-based storage.
	if kc.AllowedBackends == nil && runtime.GOOS == "linux" {
		kc.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		if ring, err = keyring.Open(kc); err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return &Keystore{ring: ring}, nil
}

// Store saves a private key for a wallet name and returns a reference key.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	err := k.ring.Set(keyring.Item{
		Key:         ref,
		Data:        []byte(hexKey),
		Label:       "krypton wallet " + name,
		Description: "private key",
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve fetches a private key by its reference.
func (k *Keystore) Retrieve(ref string) (string, error) {
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Delete removes a stored key. Deleting a missing key is not an error.
func (k *Keystore) Delete(ref string) error {
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("keychain delete: %w", err)
	}
	return nil
}

// terminalPrompt reads the file backend password without echo.
func terminalPrompt(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal: set KRYPTON_KEYRING_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt+": ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

// InMemoryKeystore keeps keys in memory (for tests).
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}
