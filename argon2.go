package homepage

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argonAlgorithmID = "argon2id"

// HasherParams tune the argon2id work factor. The zero value is not
// usable; start from DefaultHasherParams.
type HasherParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHasherParams mirror the argon2id defaults of the RFC draft.
func DefaultHasherParams() HasherParams {
	return HasherParams{
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords with argon2id. A process-wide
// secret pepper is mixed in through an HMAC pre-hash, so stored hashes
// are useless without the pepper file.
type Hasher struct {
	pepper []byte
	params HasherParams
}

// NewHasher will create a Hasher bound to the given pepper.
func NewHasher(pepper []byte, params HasherParams) (*Hasher, error) {
	if len(pepper) == 0 {
		return nil, errors.New("hasher requires a non empty pepper")
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return nil, errors.New("hasher requires non zero argon2 parameters")
	}
	if params.SaltLength < 16 || params.KeyLength < 16 {
		return nil, errors.New("hasher salt and key must be at least 16 bytes")
	}
	return &Hasher{pepper: pepper, params: params}, nil
}

// HashPassword will generate a PHC-encoded hash with a fresh random salt.
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(h.pepperize(password), salt,
		h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonAlgorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ComparePasswordAndHash will validate the given cleartext password
// against a stored PHC hash string. The hash's own parameters are used,
// so old hashes keep verifying after a parameter bump.
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	parsed, err := parsePHC(hash)
	if err != nil {
		return err
	}

	key := argon2.IDKey(h.pepperize(password), parsed.salt,
		parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))

	if subtle.ConstantTimeCompare(key, parsed.key) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

func (h *Hasher) pepperize(password string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != argonAlgorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	out := &parsedPHC{}
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid parameter entry")
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return nil, errors.New("invalid memory parameter")
			}
			out.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return nil, errors.New("invalid time parameter")
			}
			out.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil {
				return nil, errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(v)
		default:
			return nil, errors.New("unsupported parameter")
		}
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return nil, errors.New("missing parameters")
	}

	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(out.salt) < 16 || len(out.key) < 16 {
		return nil, errors.New("salt or hash too short")
	}

	return out, nil
}
