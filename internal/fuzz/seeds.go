package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16
)

func addUnitSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err == nil {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
				return nil
			}
			// #nosec G304 -- path comes from walking the repository testdata
			src, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f.Add(clampSeed(src))
			return nil
		})
	}
	// minimal inputs in case testdata is missing
	f.Add([]byte{})
	f.Add([]byte("module: empty\n"))
	f.Add([]byte("module: m\nclasses:\n  - name: Box\n    type_params: [T]\n    fields:\n      - {name: item, type: T}\n"))
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
