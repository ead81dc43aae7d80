package sanitize

import "testing"

func TestPlainText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "Printer on floor 2 is jammed", want: "Printer on floor 2 is jammed"},
		{name: "ampersand kept", in: "Q&A session", want: "Q&A session"},
		{name: "tags stripped", in: "<b>urgent</b> please", want: "urgent please"},
		{name: "script dropped", in: "<script>alert('x')</script>hello", want: "hello"},
		{name: "trimmed", in: "  <p>spaced</p>  ", want: "spaced"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in); got != tc.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
