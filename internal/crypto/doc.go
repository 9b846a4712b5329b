// Package crypto provides the encryption envelope for locknote.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the configured secret
//   - 12-byte random nonce per encryption operation
//   - 16-byte authentication tag, so tampering or a wrong key fails to decrypt
//
// An envelope is the standard base64 encoding of nonce || ciphertext || tag.
//
// Key derivation is SHA-256 of the secret by default. PBKDF2-HMAC-SHA256 is
// available through KDF when a persisted salt is at hand.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto
