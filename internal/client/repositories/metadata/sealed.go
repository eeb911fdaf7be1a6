package metadata

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authdesk/internal/common"
	"github.com/dmitrijs2005/authdesk/internal/cryptox"
)

const (
	saltKey  = "storage_salt"
	checkKey = "storage_check"
)

var checkPlaintext = []byte("authdesk-storage-v1")

var ErrWrongPassphrase = errors.New("storage passphrase does not match")

var _ Repository = (*SealedRepository)(nil)

// SealedRepository encrypts every value before handing it to the inner
// repository. The salt and a sealed check value are kept next to the data so
// a wrong passphrase is detected when the store is opened rather than on the
// first read.
type SealedRepository struct {
	inner       Repository
	key         []byte
	salt        []byte
	sealedCheck []byte
}

// OpenSealed derives the storage key from passphrase. On first use it creates
// and persists a salt and check value; afterwards it verifies the passphrase
// against the stored check and returns ErrWrongPassphrase on mismatch.
func OpenSealed(ctx context.Context, inner Repository, passphrase []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err != nil {
		return nil, err
	}

	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		key := cryptox.DeriveKey(passphrase, salt)

		check, err := cryptox.Seal(key, checkPlaintext)
		if err != nil {
			return nil, fmt.Errorf("failed to seal storage check: %w", err)
		}
		if err := inner.SetMany(ctx, map[string][]byte{saltKey: salt, checkKey: check}); err != nil {
			return nil, err
		}
		return &SealedRepository{inner: inner, key: key, salt: salt, sealedCheck: check}, nil
	}

	check, err := inner.Get(ctx, checkKey)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(passphrase, salt)
	plain, err := cryptox.Open(key, check)
	if err != nil || subtle.ConstantTimeCompare(plain, checkPlaintext) == 0 {
		return nil, ErrWrongPassphrase
	}

	return &SealedRepository{inner: inner, key: key, salt: salt, sealedCheck: check}, nil
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}

	plain, err := cryptox.Open(r.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(r.key, value)
	if err != nil {
		return fmt.Errorf("failed to seal metadata[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		s, err := cryptox.Seal(r.key, v)
		if err != nil {
			return fmt.Errorf("failed to seal metadata[%s]: %w", k, err)
		}
		sealed[k] = s
	}
	return r.inner.SetMany(ctx, sealed)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

// List returns every user value, without the salt and check entries.
func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(all))
	for k, v := range all {
		if k == saltKey || k == checkKey {
			continue
		}
		plain, err := cryptox.Open(r.key, v)
		if err != nil {
			return nil, fmt.Errorf("failed to open metadata[%s]: %w", k, err)
		}
		result[k] = plain
	}
	return result, nil
}

// Clear removes every value but keeps the store openable with the same
// passphrase.
func (r *SealedRepository) Clear(ctx context.Context) error {
	if err := r.inner.Clear(ctx); err != nil {
		return err
	}
	return r.inner.SetMany(ctx, map[string][]byte{saltKey: r.salt, checkKey: r.sealedCheck})
}
