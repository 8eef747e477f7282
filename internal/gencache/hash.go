package gencache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// Signature computes the content signature of a job: a blake3 hash over the
// tool path, its arguments and the full content of every declared input
// file, in declaration order. A missing or unreadable input is an error,
// not a cache miss.
func Signature(job Job) (string, error) {
	h := blake3.New(32, nil)

	writeField(h, job.Tool)
	for _, arg := range job.Args {
		writeField(h, arg)
	}
	for _, input := range job.Inputs {
		writeField(h, input)
		f, err := os.Open(input)
		if err != nil {
			return "", fmt.Errorf("reading generator input %q: %w", input, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("reading generator input %q: %w", input, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeField hashes a length-prefixed string so field boundaries cannot
// collide ("ab","c" vs "a","bc").
func writeField(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:", len(s))
	io.WriteString(w, s)
}
