package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	stringsplitter "github.com/james-alex/string-splitter"
)

func TestDeterministicPartStream(t *testing.T) {

	const TEST_ITERATIONS = 10

	var first [32]byte
	for iter := 0; iter < TEST_ITERATIONS; iter++ {

		mockStderr, mockStdout := new(bytes.Buffer), new(bytes.Buffer)

		spl, errs := stringsplitter.NewSplitterWithWriters(mockStderr, mockStdout)
		if len(errs) > 0 {
			for _, err := range errs {
				t.Error(err)
			}
			t.FailNow()
		}

		mockOsStdin, err := os.Open("../../test/sample-payload.dat")
		if err != nil {
			t.Fatalf("Error: %s", err)
		}

		processErr := spl.ProcessReader(
			mockOsStdin,
			nil,
		)
		mockOsStdin.Close()
		spl.Destroy()
		if processErr != nil {
			t.Fatalf("Unexpected error processing STDIN: %s", processErr)
		}

		if iter == 0 {
			first = sha256.Sum256(mockStdout.Bytes())
		} else {
			current := sha256.Sum256(mockStdout.Bytes())
			if current != first {
				t.Errorf("iteration %d: content sum does not match first content sum on iteration [ %s, %s ]", iter, hex.EncodeToString(first[:]), hex.EncodeToString(current[:]))
			}
		}
	}
}
