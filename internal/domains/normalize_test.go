package domains

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/", "example.com"},
		{"http://example.com/path?q=1", "example.com"},
		{"WWW.Example.COM", "example.com"},
		{"example.com:8080", "example.com"},
		{"  https://sub.example.com  ", "sub.example.com"},
		{"example.com.", "example.com"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSameDomain(t *testing.T) {
	if !SameDomain("https://www.acme-hvac.com/", "acme-hvac.com") {
		t.Error("expected www/scheme variants to match")
	}
	if SameDomain("acme-hvac.com", "other-hvac.com") {
		t.Error("expected distinct domains not to match")
	}
	if SameDomain("", "") {
		t.Error("empty domains must not match")
	}
}

func TestEnsureURL(t *testing.T) {
	if got := EnsureURL("example.com"); got != "https://example.com" {
		t.Errorf("EnsureURL bare domain = %q", got)
	}
	if got := EnsureURL("http://example.com"); got != "http://example.com" {
		t.Errorf("EnsureURL full url = %q", got)
	}
}

func TestBlacklisted(t *testing.T) {
	for _, d := range []string{"facebook.com", "https://www.yelp.com/biz/x", "WWW.WIX.COM"} {
		if !Blacklisted(d) {
			t.Errorf("expected %q to be blacklisted", d)
		}
	}
	if Blacklisted("acme-hvac.com") {
		t.Error("acme-hvac.com must not be blacklisted")
	}
}
