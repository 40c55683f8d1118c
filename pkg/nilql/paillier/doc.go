// Package paillier implements the Paillier additively homomorphic
// cryptosystem over math/big.
//
// The Paillier cryptosystem is a probabilistic asymmetric scheme whose
// ciphertexts can be combined so that the result decrypts to the sum of the
// plaintexts. It backs the Sum operation for single-node clusters: the node
// can add ciphertexts without ever seeing the values.
//
// # Key Operations
//
//   - Generate(): Create a new keypair (2048-bit modulus)
//   - FromPublicKey(): Create from (n, g), can encrypt and add
//   - FromPrivateKey(): Create from (lambda, mu, n, g), can also decrypt
//   - Encrypt(): Encrypt a plaintext integer
//   - Decrypt(): Decrypt a ciphertext (requires private key)
//   - AddCiphers(): E(a) * E(b) mod n^2 = E(a + b)
//   - MulScalar(): E(a)^k mod n^2 = E(k * a)
//   - VerifyCipher(): Check that a ciphertext is in the ciphertext group
//
// # Homomorphic Properties
//
//	p, _ := paillier.Generate()
//	c1, _ := p.Encrypt(big.NewInt(3))
//	c2, _ := p.Encrypt(big.NewInt(5))
//	sum, _ := p.AddCiphers(c1, c2)
//	m, _ := p.Decrypt(sum) // 8
//
// Plaintexts live in Z_n. Decrypt returns the canonical representative in
// [0, n); callers that encrypt negative numbers re-centre the result
// themselves.
package paillier
