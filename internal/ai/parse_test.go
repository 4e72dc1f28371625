package ai

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			"bare object",
			`{"score": 75}`,
			`{"score": 75}`,
			true,
		},
		{
			"object wrapped in prose",
			`Sure! Here is my assessment: {"score": 75, "reasoning": "solid"} Hope that helps.`,
			`{"score": 75, "reasoning": "solid"}`,
			true,
		},
		{
			"nested object",
			`{"outer": {"inner": 1}}`,
			`{"outer": {"inner": 1}}`,
			true,
		},
		{
			"braces inside string values",
			`{"reasoning": "uses {braces} and a \" quote"}`,
			`{"reasoning": "uses {braces} and a \" quote"}`,
			true,
		},
		{
			"first of two blocks wins",
			`{"a": 1} and later {"b": 2}`,
			`{"a": 1}`,
			true,
		},
		{
			"no json at all",
			`I cannot answer that.`,
			"",
			false,
		},
		{
			"unbalanced block",
			`{"score": 75`,
			"",
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONBlock(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ExtractJSONBlock(%q) = %q, %t; want %q, %t", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestUnmarshalBlock(t *testing.T) {
	var payload struct {
		Score int `json:"score"`
	}

	if !UnmarshalBlock(`The verdict: {"score": 42}`, &payload) {
		t.Fatal("expected a decodable block")
	}
	if payload.Score != 42 {
		t.Errorf("expected score 42, got %d", payload.Score)
	}

	if UnmarshalBlock(`{"score": "not a number"}`, &payload) {
		t.Error("type mismatch must fail the decode")
	}
	if UnmarshalBlock(`no structure here`, &payload) {
		t.Error("prose without a block must fail")
	}
}
