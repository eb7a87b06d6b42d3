/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package spyfall

import (
	"crypto/rand"
	"math/big"
)

const (
	CodeLength = 4
	CodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator produces room codes. It knows nothing about the registry;
// uniqueness is enforced when the room is stored.
type CodeGenerator func() string

// GenerateCode returns CodeLength characters drawn uniformly from CodeChars.
func GenerateCode() string {
	limit := big.NewInt(int64(len(CodeChars)))

	out := make([]byte, CodeLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out[i] = CodeChars[n.Int64()]
	}

	return string(out)
}
