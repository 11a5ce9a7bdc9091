package crisis

import "testing"

func TestDialStripsFormatting(t *testing.T) {
	cases := map[string]string{
		"(011) 5275-1135": "01152751135",
		"800-290-0024":    "8002900024",
		"+34 024":         "+34024",
	}
	for number, want := range cases {
		if got := (Helpline{Number: number}).Dial(); got != want {
			t.Fatalf("Dial(%q) = %q, want %q", number, got, want)
		}
	}
}

func TestDirectoryReturnsCopy(t *testing.T) {
	lines := Directory()
	if len(lines) == 0 {
		t.Fatal("expected helplines")
	}
	lines[0].Number = "changed"
	if Directory()[0].Number == "changed" {
		t.Fatal("directory must not be mutable by callers")
	}
}
