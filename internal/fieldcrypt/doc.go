// Package fieldcrypt applies family-code field encryption to records on their
// way to and from the backend.
//
// A record is a plain map[string]any as exchanged with the persistence API.
// Callers name the string fields that need protection (the record's field
// set); every other field is copied through untouched.
//
// # Failure model
//
//   - Key derivation faults are returned as *cryptox.KeyDerivationError and
//     abort the operation.
//   - A field that cannot be encrypted is stored as plaintext. The fault is
//     logged at WARN and reported to the degraded hook, if one is installed.
//   - A field that cannot be decrypted is replaced by DecryptionFailedText so
//     the rest of the record still renders.
//   - An empty family code short-circuits: fields are returned unchanged.
//
// Typical usage
//
//	svc := fieldcrypt.New(cryptox.NewKeyCache(), log)
//	out, err := svc.EncryptFields(ctx, rec, []string{"content"}, code)
//	...
//	svc.ClearKeyCache() // on family-code switch
package fieldcrypt
