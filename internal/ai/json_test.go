package ai

import "testing"

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "纯JSON",
			input: `{"title": "demo"}`,
			want:  `{"title": "demo"}`,
		},
		{
			name:  "markdown代码块",
			input: "```json\n{\"title\": \"demo\"}\n```",
			want:  `{"title": "demo"}`,
		},
		{
			name:  "无语言标记的代码块",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "前后有说明文字",
			input: "好的，以下是结果：\n{\"a\": 1}\n希望对你有帮助",
			want:  `{"a": 1}`,
		},
		{
			name:  "首尾空白",
			input: "  \n{\"a\": 1}\n  ",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("CleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}
