// Package vault implements the encrypted secret store of a cred project.
//
// A vault is a JSON envelope holding a ChaCha20-Poly1305 ciphertext:
//
//	{"version": 2, "nonce": "<base64>", "ciphertext": "<base64 ciphertext||tag>"}
//
// The decrypted payload maps keys to entries carrying the value, a format
// hint, a content hash and timestamps. Payloads written by the first
// schema were flat key to value maps; Load upgrades them in memory and the
// file is rewritten on the next Save.
//
// Every Save draws a fresh random nonce and replaces the file through a
// temporary file and rename, so an interrupted write leaves the previous
// vault intact.
package vault
