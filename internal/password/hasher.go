// Package password hashes and verifies passwords with argon2id.
//
// Hashes are stored in the PHC string format
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// so the parameters travel with each hash and can be raised later without
// invalidating existing credentials.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

const (
	saltLen = 16
	keyLen  = 32

	// A stored hash never asks for more than 4 GiB.
	maxMemoryKiB = 4 * 1024 * 1024
)

var (
	ErrEmptyPassword = errors.New("password is empty")
	ErrMalformedHash = errors.New("malformed password hash")
)

// Params are the argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams follow the OWASP baseline for argon2id.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  1,
	Parallelism: 4,
}

type Argon2idHasher struct {
	params Params
	rand   io.Reader
}

func NewArgon2idHasher(p Params) *Argon2idHasher {
	return &Argon2idHasher{params: p, rand: rand.Reader}
}

// Hash derives a new salted hash. Two calls with the same password return
// different hashes.
func (h *Argon2idHasher) Hash(password string) ([]byte, error) {
	if password == "" {
		return nil, oops.Code("PASSWORD_EMPTY").Wrap(ErrEmptyPassword)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return nil, oops.Code("PASSWORD_SALT_FAILED").Wrapf(err, "read salt")
	}

	pw := []byte(password)
	defer clear(pw)

	key := argon2.IDKey(pw, salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, keyLen)
	return encode(h.params, salt, key), nil
}

// Verify reports whether password matches hash. A malformed hash is an
// error; a mismatch is not.
func (h *Argon2idHasher) Verify(password string, hash []byte) (bool, error) {
	p, salt, key, err := decode(hash)
	if err != nil {
		return false, err
	}

	pw := []byte(password)
	defer clear(pw)

	candidate := argon2.IDKey(pw, salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

// DummyHash returns a well-formed hash with the current parameters that no
// password matches in practice. Verifying against it costs the same as a
// real verification.
func (h *Argon2idHasher) DummyHash() []byte {
	return encode(h.params, make([]byte, saltLen), make([]byte, keyLen))
}

func encode(p Params, salt, key []byte) []byte {
	return []byte(fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	))
}

func decode(hash []byte) (Params, []byte, []byte, error) {
	parts := strings.Split(string(hash), "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, malformed("structure")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, malformed("version")
	}

	var (
		p       Params
		threads uint32
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &threads); err != nil {
		return Params{}, nil, nil, malformed("params")
	}
	if threads == 0 || threads > 255 || p.Iterations == 0 || p.Memory == 0 || p.Memory > maxMemoryKiB {
		return Params{}, nil, nil, malformed("params")
	}
	p.Parallelism = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, malformed("salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return Params{}, nil, nil, malformed("key")
	}

	return p, salt, key, nil
}

func malformed(field string) error {
	return oops.Code("PASSWORD_HASH_MALFORMED").With("field", field).Wrap(ErrMalformedHash)
}
