// Package internal holds token material helpers shared by the public
// packages: nonce generation, token digests, and fingerprint hashing. Nothing
// here performs I/O or touches Redis.
package internal
