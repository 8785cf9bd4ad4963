package relay

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Tokyo  ", "tokyo"},
		{"ＴＯＫＹＯ", "tokyo"},                 // full-width compatibility forms fold to ASCII
		{"ﾄｳｷｮｳ", "トウキョウ"},                 // half-width katakana widens
		{"１２３", "123"},
		{"やまのてせん", "やまのてせん"},
		{"　新宿　", "新宿"},          // ideographic space counts as whitespace
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
