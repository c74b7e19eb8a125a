package trackerpath

import "testing"

func TestValidExtension(t *testing.T) {
	cases := map[string]bool{
		"nxs":        true,
		"h5":         true,
		"scan-log":   true,
		"scan_log":   true,
		"":           false,
		"../../etc":  false,
		"nxs/..":     false,
		"a.b":        false,
		"space here": false,
	}
	for ext, want := range cases {
		if got := ValidExtension(ext); got != want {
			t.Errorf("ValidExtension(%q) = %v, want %v", ext, got, want)
		}
	}
}

func TestCheckExtensionRejectsTraversal(t *testing.T) {
	if err := CheckExtension("../../etc"); err == nil {
		t.Fatal("expected error for traversal extension")
	}
}
