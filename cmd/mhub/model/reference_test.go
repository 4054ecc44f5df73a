package model

import (
	"reflect"
	"testing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Reference
		wantErr bool
	}{
		{
			name: "full reference",
			raw:  "https://registry.example.com/username/model-name@v1",
			want: Reference{
				Registry:   "https://registry.example.com",
				Repository: "username/model-name",
				Version:    "v1",
			},
		},
		{
			name: "version defaults to latest",
			raw:  "https://registry.example.com/username/model-name",
			want: Reference{
				Registry:   "https://registry.example.com",
				Repository: "username/model-name",
				Version:    "latest",
			},
		},
		{
			name: "bare name goes to library namespace",
			raw:  "https://registry.example.com/model-name",
			want: Reference{
				Registry:   "https://registry.example.com",
				Repository: "library/model-name",
				Version:    "latest",
			},
		},
		{
			name: "registry only",
			raw:  "https://registry.example.com:8443",
			want: Reference{
				Registry: "https://registry.example.com:8443",
			},
		},
		{
			name: "token query overrides authorization",
			raw:  "https://registry.example.com/username/model-name@v1?token=abc",
			want: Reference{
				Registry:      "https://registry.example.com",
				Repository:    "username/model-name",
				Version:       "v1",
				Authorization: "Bearer abc",
			},
		},
		{
			name:    "missing host",
			raw:     "https://",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(MhubAuthEnv, "")
			got, err := ParseReference(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseReference() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReference() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferenceWebURL(t *testing.T) {
	ref := Reference{
		Registry:   "https://registry.example.com",
		Repository: "username/model-name",
		Version:    "latest",
	}
	if got, want := ref.WebURL(), "https://registry.example.com/username/model-name"; got != want {
		t.Errorf("WebURL() = %v, want %v", got, want)
	}
}
