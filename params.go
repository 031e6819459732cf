package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamLine is a single row in a Params table: an engine keyword, the
// rest of its line, and any trailing comment. Comment-only lines keep
// an empty Parameter so the original file can be reproduced.
type ParamLine struct {
	Parameter string
	Value     string
	Comment   string
}

// Params is an ordered table of engine commands, the in-memory form
// of a block of control-file lines. Lookups are linear; the tables
// are tens of rows at most.
type Params struct {
	CommentChar string
	lines       []ParamLine
}

// NewParams returns an empty Params table with # as the comment
// character
func NewParams() *Params {
	return &Params{CommentChar: "#"}
}

// LoadString clears p and parses s line by line. The first field of
// each line is the parameter, the remainder the value. Text after the
// comment character is kept as the comment.
func (p *Params) LoadString(s string) {
	p.lines = nil
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var comment string
		if i := strings.Index(line, p.CommentChar); i >= 0 {
			comment = strings.TrimSpace(line[i:])
			line = line[:i]
		}
		fields := strings.Fields(line)
		var param, value string
		if len(fields) > 0 {
			param = fields[0]
			value = strings.Join(fields[1:], " ")
		}
		p.lines = append(p.lines, ParamLine{
			Parameter: param,
			Value:     value,
			Comment:   comment,
		})
	}
}

// Len returns the number of rows in p, including comment-only rows
func (p *Params) Len() int { return len(p.lines) }

// Keys returns the parameter names in file order, skipping
// comment-only rows
func (p *Params) Keys() (keys []string) {
	for _, l := range p.lines {
		if l.Parameter != "" {
			keys = append(keys, l.Parameter)
		}
	}
	return
}

// findLine locates key in p. Multi-word keys match rows whose
// parameter is the first word and whose value starts with the
// remaining words. It returns the row index and the words consumed by
// the match, or -1 if the key is absent. Multiple matches are an
// error listing each of them.
func (p *Params) findLine(key string) (int, []string, error) {
	words := strings.Fields(key)
	if len(words) == 0 {
		return -1, nil, fmt.Errorf("findLine: empty key")
	}
	var (
		matches  []int
		consumed [][]string
	)
	for i, l := range p.lines {
		if l.Parameter != words[0] {
			continue
		}
		if len(words) == 1 {
			matches = append(matches, i)
			consumed = append(consumed, []string{l.Parameter})
			continue
		}
		values := strings.Fields(l.Value)
		if len(values) < len(words)-1 {
			continue
		}
		same := true
		for w, sel := range values[:len(words)-1] {
			if sel != words[w+1] {
				same = false
				break
			}
		}
		if same {
			matches = append(matches, i)
			consumed = append(consumed, append([]string{l.Parameter}, values[:len(words)-1]...))
		}
	}
	switch len(matches) {
	case 0:
		return -1, nil, nil
	case 1:
		return matches[0], consumed[0], nil
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "multiple occurrences of key %q:", key)
	for _, i := range matches {
		fmt.Fprintf(&msg, "\nline %d: %s %s", i, p.lines[i].Parameter, p.lines[i].Value)
	}
	return -1, nil, fmt.Errorf("%s", msg.String())
}

// Get returns the decoded value of key. Multi-word keys drop the
// matched leading value words from the result. A missing key is an
// error; see GetDefault for a fallback.
func (p *Params) Get(key string) (interface{}, error) {
	i, consumed, err := p.findLine(key)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return nil, fmt.Errorf("parameter not found: %s", key)
	}
	val := p.lines[i].Value
	if n := len(consumed); n > 1 {
		fields := strings.Fields(val)
		val = strings.Join(fields[n-1:], " ")
	}
	return decodeLiteral(val), nil
}

// GetDefault is Get with a fallback value for missing keys. Ambiguous
// keys are still an error.
func (p *Params) GetDefault(key string, def interface{}) (interface{}, error) {
	i, _, err := p.findLine(key)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		return def, nil
	}
	return p.Get(key)
}

// Copy returns an independent copy of p
func (p *Params) Copy() *Params {
	q := &Params{CommentChar: p.CommentChar}
	q.lines = append(q.lines, p.lines...)
	return q
}

// Set updates key in place or appends a new row when it is absent
func (p *Params) Set(key string, value interface{}) error {
	val := fmt.Sprintf("%v", value)
	i, consumed, err := p.findLine(key)
	if err != nil {
		return err
	}
	if i < 0 {
		p.lines = append(p.lines, ParamLine{
			Parameter: strings.Fields(key)[0],
			Value: strings.TrimSpace(strings.Join(
				append(strings.Fields(key)[1:], val), " ")),
		})
		return nil
	}
	if n := len(consumed); n > 1 {
		p.lines[i].Value = strings.Join(append(consumed[1:], val), " ")
	} else {
		p.lines[i].Value = val
	}
	return nil
}

// RemoveKeys deletes every row matching one of keys. Missing keys are
// ignored.
func (p *Params) RemoveKeys(keys []string) {
	kept := p.lines[:0]
	for _, l := range p.lines {
		remove := false
		for _, k := range keys {
			if l.Parameter == k {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, l)
		}
	}
	p.lines = kept
}

// Lines renders p back to control-file lines
func (p *Params) Lines() (out []string) {
	for _, l := range p.lines {
		switch {
		case l.Parameter == "":
			out = append(out, l.Comment)
		case l.Comment != "":
			out = append(out, strings.TrimSpace(l.Parameter+" "+l.Value)+" "+l.Comment)
		default:
			out = append(out, strings.TrimSpace(l.Parameter+" "+l.Value))
		}
	}
	return
}

func (p *Params) String() string {
	return strings.Join(p.Lines(), "\n")
}

// decodeLiteral converts val to a bool, int, or float when it parses
// as one and otherwise returns it unchanged
func decodeLiteral(val string) interface{} {
	switch val {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}
