// Package nilql encrypts values for storage in, equality matching by, or
// summation across the nodes of a cluster.
//
// A SecretKey fixes a cluster topology and exactly one Operation. The
// operation and node count together select the scheme:
//
//	operation | one node                  | several nodes
//	----------+---------------------------+----------------------------
//	Store     | XSalsa20-Poly1305         | XOR secret sharing
//	Match     | salted SHA-512            | salted SHA-512, replicated
//	Sum       | Paillier (2048-bit)       | additive sharing mod 2^32
//
// Multi-node ciphertexts are embedded in documents as {"$allot": ...}
// markers. Allot splits such a document into one document per node, and
// Unify recombines the per-node documents returned by the nodes,
// decrypting shares along the way:
//
//	sk, _ := nilql.GenerateSecretKey(nilql.NewCluster(3), nilql.Store)
//	ct, _ := nilql.Encrypt(sk, nilql.String("abc"))
//	doc := document.Map{"name": nilql.AllotmentOf(ct)}
//	perNode, _ := nilql.Allot(doc)
//	// ... deliver perNode[i] to node i, fetch it back ...
//	orig, _ := nilql.Unify(sk, perNode)
//
// Match ciphertexts cannot be decrypted; compare them directly.
//
// Keys are immutable once built and safe for concurrent use.
package nilql
