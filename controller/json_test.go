package controller

import "testing"

func TestJSONString(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", `""`},
		{"mkey:1", `"mkey:1"`},
		{"hello world", `"hello world"`},
		{"say \"hi\"", `"say \"hi\""`},
		{"a\nb", `"a\nb"`},
		{"back\\slash", `"back\\slash"`},
	}
	for _, tt := range tests {
		if s := jsonString(tt.in); s != tt.out {
			t.Fatalf("jsonString(%q) = %s, expect %s", tt.in, s, tt.out)
		}
	}
}

func TestJSONFloat(t *testing.T) {
	if s := jsonFloat(0.0000001); s != "0.0000001" {
		t.Fatalf("jsonFloat = %s, expect 0.0000001", s)
	}
	if s := jsonFloat(100); s != "100" {
		t.Fatalf("jsonFloat = %s, expect 100", s)
	}
}
