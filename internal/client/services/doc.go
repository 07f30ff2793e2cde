// Package services contains the application services of the kidkeeper client.
//
// Every service stores its domain values as generic records. Protected string
// fields are encrypted with the active family code before a record reaches a
// repository and decrypted after it is read back, so the backend only ever
// sees ciphertext for them. Fields that cannot be decrypted surface as
// fieldcrypt.DecryptionFailedText rather than failing the whole read.
package services
