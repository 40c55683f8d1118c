// Package nodesim provides an in-memory cluster of storage nodes for tests
// and examples.
//
// Each simulated node keeps the documents delivered to it and can answer
// the queries a real node answers over secret-shared data: summing the
// additive shares found at a path, homomorphically adding Paillier
// ciphertexts on a single node, and finding documents whose match share
// equals a presented one. Nodes never see keys.
//
// # Usage
//
//	sk, _ := nilql.GenerateSecretKey(nilql.NewCluster(3), nilql.Sum)
//	net, _ := nodesim.New(3)
//
//	for _, v := range []int64{10, 20, 30} {
//	    ct, _ := nilql.Encrypt(sk, nilql.Integer(v))
//	    docs, _ := nilql.Allot(document.Map{"v": nilql.AllotmentOf(ct)})
//	    _ = net.Deliver(ctx, docs)
//	}
//
//	shares, _ := net.Sum(ctx, "v")
//	total, _ := nilql.Unify(sk, shares) // document.Int(60)
//
// Paths address nested map fields with dots, e.g. "dat.loc".
package nodesim
