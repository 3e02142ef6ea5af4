package norm

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n{\"a\":1}\n```",
			want: "{\"a\":1}",
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\":1}\n```",
			want: "{\"a\":1}",
		},
		{
			name: "no fence",
			in:   "{\"a\":1}",
			want: "{\"a\":1}",
		},
		{
			name: "surrounding whitespace",
			in:   "  \n```json\n{\"a\": \"b\"}\n```  \n",
			want: "{\"a\": \"b\"}",
		},
		{
			name: "plain prose untouched",
			in:   "just text",
			want: "just text",
		},
		{
			name: "backticks inside content survive",
			in:   "use `go build` here",
			want: "use `go build` here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripCodeFence(tt.in)
			if got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripCodeFenceLeavesNoFenceChars(t *testing.T) {
	out := StripCodeFence("```json\n{\"k\":\"v\"}\n```")
	for i := 0; i < len(out); i++ {
		if out[i] == '`' {
			t.Fatalf("fence character remains in output: %q", out)
		}
	}
	if out != "{\"k\":\"v\"}" {
		t.Fatalf("expected inner object, got %q", out)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "prose around object",
			in:   "Here is the result:\n{\"a\":1}\nHope this helps!",
			want: `{"a":1}`,
		},
		{
			name: "array",
			in:   "result: [1,2,3] done",
			want: "[1,2,3]",
		},
		{
			name: "fenced object",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObject(tt.in)
			if got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
