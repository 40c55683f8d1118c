// Package document models the JSON-like documents that carry ciphertexts
// to and from cluster nodes.
//
// A Document is one of Null, Bool, Int, String, List or Map. Two map shapes
// are distinguished by convention:
//
//	{"$allot": V}  // client-side: V is a multi-node ciphertext to distribute
//	{"$share": V}  // node-side: V is the share held by one node
//
// Documents are plain values. They are built fresh per call and never
// mutated by the allot/unify traversals.
package document
