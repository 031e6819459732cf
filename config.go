package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Key is a type for input keyword indices
type Key int

// Keys in the configuration array. To add a new Keyword, add a Key
// here and to the String method below, then add its entry to Conf.
const (
	JobName Key = iota
	LammpsCmd
	PotName
	DataFile
	VolRange
	NumPoints
	FitOrder
	FitType
	RunMode
	ProjectFile
	WorkDir
	CustomConfig
	NumKeys
)

func (k Key) String() string {
	return []string{
		"JobName",
		"LammpsCmd",
		"PotName",
		"DataFile",
		"VolRange",
		"NumPoints",
		"FitOrder",
		"FitType",
		"RunMode",
		"ProjectFile",
		"WorkDir",
		"CustomConfig",
	}[k]
}

type Keyword struct {
	Re      *regexp.Regexp
	Extract func(string) interface{}
	Value   interface{}
}

type Config [NumKeys]Keyword

// At returns the Value of c at k
func (c *Config) At(k Key) interface{} {
	return (*c)[k].Value
}

// Set sets the Value of c at k
func (c *Config) Set(k Key, val interface{}) {
	(*c)[k].Value = val
}

func (c *Config) Str(k Key) string {
	if (*c)[k].Value == nil {
		return ""
	}
	return (*c)[k].Value.(string)
}

func (c *Config) Float(k Key) float64 {
	return (*c)[k].Value.(float64)
}

func (c *Config) Int(k Key) int {
	return (*c)[k].Value.(int)
}

func (c Config) String() string {
	var buf strings.Builder
	for i, kw := range c {
		fmt.Fprintf(&buf, "%s: %v\n", Key(i), kw.Value)
	}
	return buf.String()
}

func kwpanic(str string, err error) {
	panic(
		fmt.Sprintf(
			"%v parsing input line %q\n",
			err, str),
	)
}

func StringKeyword(str string) interface{} {
	return str
}

func FloatKeyword(str string) interface{} {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		kwpanic(str, err)
	}
	return f
}

func IntKeyword(str string) interface{} {
	v, err := strconv.Atoi(str)
	if err != nil {
		kwpanic(str, err)
	}
	return v
}

var Conf = Config{
	JobName: {
		Re:      regexp.MustCompile(`(?i)jobname=`),
		Extract: StringKeyword,
		Value:   "eos",
	},
	LammpsCmd: {
		Re:      regexp.MustCompile(`(?i)lammps=`),
		Extract: StringKeyword,
		Value:   "lmp",
	},
	PotName: {
		Re:      regexp.MustCompile(`(?i)potential=`),
		Extract: StringKeyword,
	},
	DataFile: {
		Re:      regexp.MustCompile(`(?i)structure=`),
		Extract: StringKeyword,
	},
	VolRange: {
		Re:      regexp.MustCompile(`(?i)volrange=`),
		Extract: FloatKeyword,
		Value:   0.1,
	},
	NumPoints: {
		Re: regexp.MustCompile(`(?i)numpoints=`),
		Extract: func(str string) interface{} {
			v := IntKeyword(str)
			if v.(int) < 2 {
				panic("numpoints must be at least 2")
			}
			return v
		},
		Value: 11,
	},
	FitOrder: {
		Re:      regexp.MustCompile(`(?i)fitorder=`),
		Extract: IntKeyword,
		Value:   3,
	},
	FitType: {
		Re: regexp.MustCompile(`(?i)fittype=`),
		Extract: func(str string) interface{} {
			switch str {
			case FitPolynomial, FitMurnaghan, FitBirchMurnaghan:
			default:
				panic("unsupported option for keyword fittype")
			}
			return str
		},
		Value: FitPolynomial,
	},
	RunMode: {
		Re: regexp.MustCompile(`(?i)runmode=`),
		Extract: func(str string) interface{} {
			switch str {
			case ModeInteractive, ModeStatic:
			default:
				panic("unsupported option for keyword runmode")
			}
			return str
		},
		Value: ModeInteractive,
	},
	ProjectFile: {
		Re:      regexp.MustCompile(`(?i)project=`),
		Extract: StringKeyword,
		Value:   "pbeos.db",
	},
	WorkDir: {
		Re:      regexp.MustCompile(`(?i)workdir=`),
		Extract: StringKeyword,
		Value:   "eos",
	},
	CustomConfig: {
		Re:      regexp.MustCompile(`(?i)config=`),
		Extract: StringKeyword,
	},
}
