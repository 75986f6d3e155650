// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keychain stores host credentials encrypted in memory, optionally
// persisted to disk.
package keychain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/go-arcade/composition/internal/compose"
	"github.com/go-arcade/composition/internal/services"
	"github.com/go-arcade/composition/pkg/log"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	nonceSize = 24
	keyPrefix = "credential:"
	kdfSalt   = "extension-host/keychain"
)

// Conf configures the keychain store.
type Conf struct {
	// Path is the persistence directory; empty keeps credentials in memory only.
	Path     string `mapstructure:"path"`
	MaxBytes int    `mapstructure:"maxBytes"`
}

// SetDefaults fills unset fields.
func (c *Conf) SetDefaults() {
	if c.MaxBytes <= 0 {
		c.MaxBytes = 32 * 1024 * 1024
	}
}

// Store implements services.Keychain.
type Store struct {
	mu     sync.Mutex
	cache  *fastcache.Cache
	key    [32]byte
	path   string
	logger log.ILogger
}

var _ services.Keychain = (*Store)(nil)

// New opens a store whose entries are sealed with a key derived from
// fingerprint.
func New(conf Conf, fingerprint string, logger log.ILogger) (*Store, error) {
	if fingerprint == "" {
		return nil, errors.New("keychain: machine fingerprint is required")
	}
	conf.SetDefaults()

	derived, err := scrypt.Key([]byte(fingerprint), []byte(kdfSalt), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("keychain: derive key: %w", err)
	}

	s := &Store{path: conf.Path, logger: log.OrGlobal(logger)}
	copy(s.key[:], derived)
	if conf.Path != "" {
		s.cache = fastcache.LoadFromFileOrNew(conf.Path, conf.MaxBytes)
	} else {
		s.cache = fastcache.New(conf.MaxBytes)
	}
	return s, nil
}

// Load returns the credential stored for hostAddress.
func (s *Store) Load(ctx context.Context, hostAddress string) (services.Credential, error) {
	var cred services.Credential
	if err := ctx.Err(); err != nil {
		return cred, err
	}
	sealed, ok := s.cache.HasGet(nil, entryKey(hostAddress))
	if !ok {
		return cred, fmt.Errorf("%s: %w", hostAddress, services.ErrCredentialNotFound)
	}
	if len(sealed) < nonceSize {
		return cred, fmt.Errorf("keychain: corrupt entry for %s", hostAddress)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return cred, fmt.Errorf("keychain: cannot decrypt entry for %s", hostAddress)
	}
	if err := sonic.Unmarshal(plain, &cred); err != nil {
		return cred, fmt.Errorf("keychain: decode entry for %s: %w", hostAddress, err)
	}
	return cred, nil
}

// Save stores cred for hostAddress, replacing any previous entry.
func (s *Store) Save(ctx context.Context, hostAddress string, cred services.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	plain, err := sonic.Marshal(cred)
	if err != nil {
		return fmt.Errorf("keychain: encode entry for %s: %w", hostAddress, err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("keychain: nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(entryKey(hostAddress), sealed)
	return s.persist()
}

// Delete removes the entry for hostAddress. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, hostAddress string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Del(entryKey(hostAddress))
	return s.persist()
}

// Close persists the store and releases the cache memory.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.persist()
	s.cache.Reset()
	return err
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	if err := s.cache.SaveToFile(s.path); err != nil {
		s.logger.Errorw("failed to persist keychain", "path", s.path, "error", err)
		return fmt.Errorf("keychain: persist: %w", err)
	}
	return nil
}

func entryKey(hostAddress string) []byte {
	host := strings.TrimRight(strings.ToLower(strings.TrimSpace(hostAddress)), "/")
	return []byte(keyPrefix + host)
}

// Assembly exports a shared Store under the services.Keychain contract.
func Assembly(conf Conf, fingerprint string, logger log.ILogger) compose.Assembly {
	return compose.NewAssembly("keychain",
		compose.Provide(func(compose.Resolver) (services.Keychain, error) {
			return New(conf, fingerprint, logger)
		}),
	)
}
