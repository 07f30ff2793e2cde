package fieldcrypt

import (
	"context"
	"errors"
	"maps"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/kidkeeper/internal/cryptox"
	"github.com/dmitrijs2005/kidkeeper/internal/logging"
)

// DecryptionFailedText is shown in place of a field that could not be decrypted.
const DecryptionFailedText = "[decryption failed]"

// DegradedHook is called when a field had to be persisted as plaintext.
type DegradedHook func(ctx context.Context, field string, err error)

// Service encrypts and decrypts named record fields under keys derived from
// family codes. It is safe for concurrent use.
type Service struct {
	keys       *cryptox.KeyCache
	log        logging.Logger
	onDegraded DegradedHook
	seal       func(string, *cryptox.Key) (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithDegradedHook installs fn to observe encryption fallbacks.
func WithDegradedHook(fn DegradedHook) Option {
	return func(s *Service) {
		s.onDegraded = fn
	}
}

// New returns a Service that caches keys in keys and reports through log.
func New(keys *cryptox.KeyCache, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		keys: keys,
		log:  log.With("component", "fieldcrypt"),
		seal: cryptox.Seal,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IsEncrypted reports whether text is tagged ciphertext.
func IsEncrypted(text string) bool {
	return cryptox.IsEncrypted(text)
}

// IsEncrypted reports whether text is tagged ciphertext.
func (s *Service) IsEncrypted(text string) bool {
	return cryptox.IsEncrypted(text)
}

// ClearKeyCache forgets every derived key.
func (s *Service) ClearKeyCache() {
	s.keys.Clear()
}

// DeriveKey returns the (cached) key for familyCode.
func (s *Service) DeriveKey(ctx context.Context, familyCode string) (*cryptox.Key, error) {
	key, err := s.keys.Get(familyCode)
	if err != nil {
		s.logKeyError(ctx, err)
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext under familyCode's key. With an empty family code
// or empty plaintext the input is returned unchanged.
func (s *Service) Encrypt(ctx context.Context, plaintext, familyCode string) (string, error) {
	if familyCode == "" || plaintext == "" {
		return plaintext, nil
	}
	key, err := s.DeriveKey(ctx, familyCode)
	if err != nil {
		return "", err
	}
	return s.encryptValue(ctx, "", plaintext, key), nil
}

// Decrypt opens ciphertext under familyCode's key. Untagged values pass
// through; undecipherable ones come back as DecryptionFailedText.
func (s *Service) Decrypt(ctx context.Context, ciphertext, familyCode string) (string, error) {
	if familyCode == "" || !cryptox.IsEncrypted(ciphertext) {
		return ciphertext, nil
	}
	key, err := s.DeriveKey(ctx, familyCode)
	if err != nil {
		return "", err
	}
	return s.decryptValue(ctx, "", ciphertext, key), nil
}

// EncryptFields returns a copy of record in which every named field holding a
// non-empty string is encrypted. record itself is never modified.
func (s *Service) EncryptFields(ctx context.Context, record map[string]any, fields []string, familyCode string) (map[string]any, error) {
	return s.transform(ctx, record, fields, familyCode, s.encryptValue)
}

// DecryptFields returns a copy of record in which every named field holding a
// non-empty string is decrypted.
func (s *Service) DecryptFields(ctx context.Context, record map[string]any, fields []string, familyCode string) (map[string]any, error) {
	return s.transform(ctx, record, fields, familyCode, s.decryptValue)
}

// DecryptArrayFields runs DecryptFields over every record concurrently. The
// result is positionally aligned with records.
func (s *Service) DecryptArrayFields(ctx context.Context, records []map[string]any, fields []string, familyCode string) ([]map[string]any, error) {
	if records == nil {
		return nil, nil
	}
	out := make([]map[string]any, len(records))
	if familyCode == "" {
		for i, r := range records {
			out[i] = maps.Clone(r)
		}
		return out, nil
	}

	// derive once up front so a provider fault surfaces a single error
	if _, err := s.DeriveKey(ctx, familyCode); err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, r := range records {
		i, r := i, r
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			dec, err := s.DecryptFields(gCtx, r, fields, familyCode)
			if err != nil {
				return err
			}
			out[i] = dec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type valueFunc func(ctx context.Context, field, value string, key *cryptox.Key) string

func (s *Service) transform(ctx context.Context, record map[string]any, fields []string, familyCode string, fn valueFunc) (map[string]any, error) {
	out := maps.Clone(record)
	if out == nil || familyCode == "" {
		return out, nil
	}

	var key *cryptox.Key
	for _, f := range fields {
		v, ok := out[f].(string)
		if !ok || v == "" {
			continue
		}
		if key == nil {
			k, err := s.DeriveKey(ctx, familyCode)
			if err != nil {
				return nil, err
			}
			key = k
		}
		out[f] = fn(ctx, f, v, key)
	}
	return out, nil
}

func (s *Service) encryptValue(ctx context.Context, field, plaintext string, key *cryptox.Key) string {
	sealed, err := s.seal(plaintext, key)
	if err != nil {
		s.log.Warn(ctx, "field encryption degraded to plaintext", "field", field, "error", err)
		if s.onDegraded != nil {
			s.onDegraded(ctx, field, err)
		}
		return plaintext
	}
	return sealed
}

func (s *Service) decryptValue(ctx context.Context, field, ciphertext string, key *cryptox.Key) string {
	plaintext, err := cryptox.Open(ciphertext, key)
	if err != nil {
		s.log.Debug(ctx, "field decryption failed", "field", field, "error", err)
		return DecryptionFailedText
	}
	return plaintext
}

func (s *Service) logKeyError(ctx context.Context, err error) {
	if errors.Is(err, cryptox.ErrEmptyFamilyCode) {
		return
	}
	s.log.Error(ctx, "key derivation failed", "error", err)
}
