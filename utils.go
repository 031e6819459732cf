package main

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFile reads a file and returns a slice of strings of the
// non-blank lines
func ReadFile(filename string) (lines []string, err error) {
	f, err := os.Open(filename)
	defer f.Close()
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// RunProgram runs a program, redirecting STDIN from filename.in
// and STDOUT to filename.out
func RunProgram(progName, filename string) (err error) {
	infile := filename + ".in"
	outfile := filename + ".out"
	cmd := exec.Command(progName)
	f, err := os.Open(infile)
	defer f.Close()
	cmd.Stdin = f
	if err != nil {
		return err
	}
	of, err := os.Create(outfile)
	cmd.Stdout = of
	cmd.Stderr = of
	defer of.Close()
	cmd.Dir = filepath.Dir(filename)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// ArgSort returns the indices that would sort x ascending, leaving x
// itself untouched
func ArgSort(x []float64) []int {
	inds := make([]int, len(x))
	for i := range inds {
		inds[i] = i
	}
	sort.Slice(inds, func(i, j int) bool {
		return x[inds[i]] < x[inds[j]]
	})
	return inds
}

// TakeAt gathers the elements of x at inds into a new slice
func TakeAt(x []float64, inds []int) []float64 {
	ret := make([]float64, 0, len(inds))
	for _, i := range inds {
		ret = append(ret, x[i])
	}
	return ret
}
