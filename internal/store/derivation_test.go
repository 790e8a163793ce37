package store

import "testing"

func TestDerivationRegistry_IssuerFor(t *testing.T) {
	r := NewDerivationRegistry(map[string]string{
		"http://localhost:3000/alice/":         "http://issuer-a.example.com",
		"http://localhost:3000/alice/private/": "http://issuer-b.example.com",
	})

	tests := []struct {
		name     string
		resource string
		want     string
	}{
		{
			name:     "Longest Prefix Wins",
			resource: "http://localhost:3000/alice/private/doc",
			want:     "http://issuer-b.example.com",
		},
		{
			name:     "Shorter Prefix",
			resource: "http://localhost:3000/alice/profile/card",
			want:     "http://issuer-a.example.com",
		},
		{
			name:     "No Match",
			resource: "http://localhost:3000/bob/doc",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.IssuerFor(tt.resource); got != tt.want {
				t.Errorf("IssuerFor(%q) = %q, want %q", tt.resource, got, tt.want)
			}
		})
	}
}

func TestDerivationRegistry_Track(t *testing.T) {
	r := NewDerivationRegistry(nil)
	r.Track("http://localhost:3000/alice/", "http://issuer-a.example.com")
	r.Track("http://localhost:3000/alice/", "http://issuer-c.example.com")

	if got := r.IssuerFor("http://localhost:3000/alice/doc"); got != "http://issuer-c.example.com" {
		t.Errorf("IssuerFor() = %q, want the replaced issuer", got)
	}
}
