package main

import (
	"bufio"
	"os"
	"strings"
)

// ProcessInput extracts a keyword from a line of input and stores its
// value in Conf
func ProcessInput(line string) {
	for k := range Conf {
		kw := &Conf[k]
		if kw.Re != nil && kw.Re.MatchString(line) {
			split := strings.SplitN(line, "=", 2)
			kw.Value = kw.Extract(strings.TrimSpace(split[len(split)-1]))
			return
		}
	}
	panic("unrecognized input line: " + line)
}

// ParseInfile parses an input file and stores the results in Conf.
// Lines starting with # are comments, and a keyword ending in { opens
// a block that runs to the matching }.
func ParseInfile(filename string) {
	f, err := os.Open(filename)
	defer f.Close()
	if err != nil {
		panic(err)
	}
	scanner := bufio.NewScanner(f)
	var (
		block   strings.Builder
		inblock bool
		line    string
	)
	for scanner.Scan() {
		line = scanner.Text()
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "#"):
		case strings.TrimSpace(line) == "":
		case inblock && strings.Contains(line, "}"):
			inblock = false
			ProcessInput(strings.TrimSpace(block.String()))
			block.Reset()
		case strings.Contains(line, "{"):
			keyword := strings.SplitN(line, "{", 2)[0]
			block.WriteString(keyword)
			inblock = true
		case inblock:
			block.WriteString(line + "\n")
		default:
			ProcessInput(line)
		}
	}
}
