package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
	generatedKeyLen     = 32
)

var ErrEmptyKey = errors.New("empty admin key")

// KeyHash is the stored form of an admin key.
type KeyHash struct {
	Hash string `json:"key_hash" yaml:"key_hash"`
	Salt string `json:"key_salt" yaml:"key_salt"`
}

func HashKey(key, pepper string) (*KeyHash, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	salt, err := utils.RandBytes(saltLen)
	if err != nil {
		return nil, err
	}
	return &KeyHash{
		Hash: base64.RawStdEncoding.EncodeToString(deriveKey(key, pepper, salt)),
		Salt: base64.RawStdEncoding.EncodeToString(salt),
	}, nil
}

func VerifyKey(key, pepper string, stored *KeyHash) (bool, error) {
	if stored == nil {
		return false, errors.New("no stored key")
	}
	if key == "" {
		return false, nil
	}
	salt, err := base64.RawStdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return false, err
	}
	expected, err := base64.RawStdEncoding.DecodeString(stored.Hash)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(deriveKey(key, pepper, salt), expected) == 1, nil
}

func ParseKeyHash(hash, salt string) (*KeyHash, error) {
	if hash == "" || salt == "" {
		return nil, errors.New("empty hash or salt")
	}
	return &KeyHash{Hash: hash, Salt: salt}, nil
}

// GenerateKey returns a random url-safe admin key.
func GenerateKey() (string, error) {
	return utils.RandString(generatedKeyLen)
}

func deriveKey(key, pepper string, salt []byte) []byte {
	input := append([]byte(key), []byte(pepper)...)
	return argon2.IDKey(input, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}
