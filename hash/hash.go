// Package hash computes the stable content hashes that back every
// content-derived identifier in the pipeline (documents, text units,
// entities, relationships).
package hash

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
)

// Pair is one named component folded into a hash. Order matters: callers
// must pass components in the exact order the identity contract requires.
type Pair struct {
	Key   string
	Value any
}

// Of constructs a Pair. A thin constructor kept mainly so call sites read
// as a flat literal list rather than repeated struct literals.
func Of(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// Hash computes SHA-512 over the UTF-8 concatenation of each pair rendered
// as "key=value" joined by "\n", and returns the lower-case hex digest.
//
// This must be bit-identical across runs and platforms for identical
// inputs: every stable id in the system is derived from it, so the
// rendering of Value must never depend on map iteration order, pointer
// identity, or anything else non-deterministic. Callers are responsible
// for passing already-ordered components (e.g. a document's metadata must
// be iterated in insertion order before being passed here).
func Hash(pairs ...Pair) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		fmt.Fprintf(&sb, "%v", p.Value)
	}
	sum := sha512.Sum512([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
