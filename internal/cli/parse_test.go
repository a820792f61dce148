package cli

import (
	"reflect"
	"testing"
)

func TestParseRequestURL(t *testing.T) {
	tests := []struct {
		name        string
		fullURL     string
		wantBase    string
		wantVirtual string
		wantErr     bool
	}{
		{
			name:        "tools list",
			fullURL:     "http://localhost:3000/tools",
			wantBase:    "http://localhost:3000",
			wantVirtual: "/tools",
		},
		{
			name:        "tool call",
			fullURL:     "https://api.example.com/mcp/tools/weather",
			wantBase:    "https://api.example.com/mcp",
			wantVirtual: "/tools/weather",
		},
		{
			name:        "resources with nested path",
			fullURL:     "http://localhost:3000/resources/path/to/file",
			wantBase:    "http://localhost:3000",
			wantVirtual: "/resources/path/to/file",
		},
		{
			name:        "prompts",
			fullURL:     "http://localhost:3000/prompts/greeting",
			wantBase:    "http://localhost:3000",
			wantVirtual: "/prompts/greeting",
		},
		{
			name:    "no MCP segment",
			fullURL: "http://localhost:3000/api/other",
			wantErr: true,
		},
		{
			name:    "bare host",
			fullURL: "http://localhost:3000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, virtual, err := ParseRequestURL(tt.fullURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.fullURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequestURL(%q) failed: %v", tt.fullURL, err)
			}
			if base != tt.wantBase {
				t.Errorf("base = %q, want %q", base, tt.wantBase)
			}
			if virtual != tt.wantVirtual {
				t.Errorf("virtual = %q, want %q", virtual, tt.wantVirtual)
			}
		})
	}
}

func TestParseDataValue(t *testing.T) {
	tests := []struct {
		value string
		want  interface{}
	}{
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"hello", "hello"},
		{"12abc", "12abc"},
		{"1.2.3", "1.2.3"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := ParseDataValue(tt.value); got != tt.want {
				t.Errorf("ParseDataValue(%q) = %v (%T), want %v (%T)", tt.value, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseDataFlags(t *testing.T) {
	t.Run("key=value pairs with coercion", func(t *testing.T) {
		got, err := ParseDataFlags([]string{"name=echo", "count=3", "loud=true"})
		if err != nil {
			t.Fatalf("ParseDataFlags failed: %v", err)
		}
		want := map[string]interface{}{"name": "echo", "count": int64(3), "loud": true}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("value containing equals", func(t *testing.T) {
		got, err := ParseDataFlags([]string{"expr=a=b"})
		if err != nil {
			t.Fatalf("ParseDataFlags failed: %v", err)
		}
		if got["expr"] != "a=b" {
			t.Errorf("expected value split on first =, got %v", got["expr"])
		}
	})

	t.Run("JSON object merged", func(t *testing.T) {
		got, err := ParseDataFlags([]string{`{"theme": "dark", "size": 2}`, "name=x"})
		if err != nil {
			t.Fatalf("ParseDataFlags failed: %v", err)
		}
		if got["theme"] != "dark" || got["name"] != "x" {
			t.Errorf("JSON object not merged with key=value flags: %v", got)
		}
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		if _, err := ParseDataFlags([]string{`{"broken`}); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("JSON array rejected", func(t *testing.T) {
		if _, err := ParseDataFlags([]string{`[1, 2, 3]`}); err == nil {
			t.Error("expected error for JSON array")
		}
	})

	t.Run("missing equals rejected", func(t *testing.T) {
		if _, err := ParseDataFlags([]string{"noequals"}); err == nil {
			t.Error("expected error for bare value")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := ParseDataFlags(nil)
		if err != nil {
			t.Fatalf("ParseDataFlags failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty map, got %v", got)
		}
	})
}

func TestParseHeaders(t *testing.T) {
	t.Run("valid headers", func(t *testing.T) {
		got, err := ParseHeaders([]string{"Authorization: Bearer tok1", "X-Custom:value"})
		if err != nil {
			t.Fatalf("ParseHeaders failed: %v", err)
		}
		if got["Authorization"] != "Bearer tok1" {
			t.Errorf("unexpected Authorization header: %q", got["Authorization"])
		}
		if got["X-Custom"] != "value" {
			t.Errorf("unexpected X-Custom header: %q", got["X-Custom"])
		}
	})

	t.Run("missing colon rejected", func(t *testing.T) {
		if _, err := ParseHeaders([]string{"NoColonHere"}); err == nil {
			t.Error("expected error for header without colon")
		}
	})
}
