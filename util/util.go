package util

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// GatherAllMidiPaths returns the path itself for a file, or every .mid/.midi
// file below a directory. maxNum of 0 means no limit.
func GatherAllMidiPaths(path string, maxNum int) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not stat input")
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsMidiPath(s) {
			if maxNum == 0 || len(res) < maxNum {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, errors.Wrap(err, "error walking input dir")
	}
	sort.Strings(res)
	return res, nil
}

func IsMidiPath(s string) bool {
	s = strings.ToLower(s)
	return strings.HasSuffix(s, ".mid") || strings.HasSuffix(s, ".midi")
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

// GetValues returns the values of m in key order.
func GetValues[A constraints.Ordered, B any](m map[A]B) []B {
	res := make([]B, 0, len(m))
	for _, k := range GetKeys(m) {
		res = append(res, m[k])
	}
	return res
}

func WriteJSON(filename string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode output")
	}
	return errors.Wrap(os.WriteFile(filename, b, 0644), "write failed for "+filename)
}

func Min[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Abs[A constraints.Signed | constraints.Float](n A) A {
	if n < 0 {
		return -n
	}
	return n
}

func Sum[A constraints.Integer](nums []A) int64 {
	var total int64
	for _, v := range nums {
		total += int64(v)
	}
	return total
}

// RoundTo snaps v to the nearest multiple of step, halves rounding up.
func RoundTo(v, step int64) int64 {
	if step <= 0 {
		return v
	}
	q := v / step
	r := v - q*step
	if r < 0 {
		q--
		r += step
	}
	if 2*r >= step {
		q++
	}
	return q * step
}

func IsPowerOfTwo[A constraints.Integer](n A) bool {
	return n > 0 && n&(n-1) == 0
}
