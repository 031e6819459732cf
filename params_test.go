package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const eamConfig = `# EAM potential for Al
units metal
pair_style eam/alloy
pair_coeff * * Al99.eam.alloy Al
`

func loadParams(t *testing.T, s string) *Params {
	t.Helper()
	p := NewParams()
	p.LoadString(s)
	return p
}

func TestParamsGet(t *testing.T) {
	tests := []struct {
		msg  string
		load string
		key  string
		want interface{}
	}{
		{
			msg:  "single word key",
			load: eamConfig,
			key:  "pair_style",
			want: "eam/alloy",
		},
		{
			msg:  "multi word key",
			load: eamConfig,
			key:  "pair_coeff * *",
			want: "Al99.eam.alloy Al",
		},
		{
			msg:  "int literal",
			load: "dimension 3\n",
			key:  "dimension",
			want: 3,
		},
		{
			msg:  "float literal",
			load: "timestep 0.005\n",
			key:  "timestep",
			want: 0.005,
		},
		{
			msg:  "bool literal",
			load: "newton True\n",
			key:  "newton",
			want: true,
		},
		{
			msg:  "value with trailing comment",
			load: "units metal # always metal units\n",
			key:  "units",
			want: "metal",
		},
	}
	for _, test := range tests {
		p := loadParams(t, test.load)
		got, err := p.Get(test.key)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", test.msg, err)
		}
		if got != test.want {
			t.Errorf("%s: got %v, wanted %v\n", test.msg, got, test.want)
		}
	}
}

func TestParamsGetMissing(t *testing.T) {
	p := loadParams(t, eamConfig)
	if _, err := p.Get("mass"); err == nil {
		t.Error("wanted an error for a missing key, got none")
	}
	got, err := p.GetDefault("mass", 26.98)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != 26.98 {
		t.Errorf("got %v, wanted 26.98\n", got)
	}
}

func TestParamsGetAmbiguous(t *testing.T) {
	p := loadParams(t, `pair_coeff 1 1 0.1 3.4
pair_coeff 2 2 0.2 2.8
`)
	_, err := p.Get("pair_coeff")
	if err == nil {
		t.Fatal("wanted an error for an ambiguous key, got none")
	}
	if !strings.Contains(err.Error(), "multiple occurrences") {
		t.Errorf("error %q does not mention multiple occurrences", err)
	}
	// the full key is unambiguous
	got, err := p.Get("pair_coeff 2 2")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != "0.2 2.8" {
		t.Errorf("got %v, wanted 0.2 2.8\n", got)
	}
}

func TestParamsRemoveKeys(t *testing.T) {
	p := loadParams(t, `units metal
dimension 3
atom_style atomic
pair_style eam/alloy
`)
	p.RemoveKeys(structureKeys)
	got := p.Keys()
	want := []string{"pair_style"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsSet(t *testing.T) {
	p := loadParams(t, eamConfig)
	if err := p.Set("pair_style", "eam/fs"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got, _ := p.Get("pair_style")
	if got != "eam/fs" {
		t.Errorf("got %v, wanted eam/fs\n", got)
	}
	// setting a new key appends it
	if err := p.Set("mass", "1 26.98"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got, _ := p.Get("mass"); got != "1 26.98" {
		t.Errorf("got %v, wanted 1 26.98\n", got)
	}
}

func TestParamsLines(t *testing.T) {
	p := loadParams(t, eamConfig)
	want := []string{
		"# EAM potential for Al",
		"units metal",
		"pair_style eam/alloy",
		"pair_coeff * * Al99.eam.alloy Al",
	}
	if diff := cmp.Diff(want, p.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
