package googleauth

import (
	"reflect"
	"testing"
)

func TestOpenBrowserCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{goos: "darwin", wantName: "open", wantArgs: []string{"http://x"}},
		{goos: "windows", wantName: "rundll32", wantArgs: []string{"url.dll,FileProtocolHandler", "http://x"}},
		{goos: "linux", wantName: "xdg-open", wantArgs: []string{"http://x"}},
		{goos: "freebsd", wantName: "xdg-open", wantArgs: []string{"http://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openBrowserCommand("http://x", tt.goos)
			if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("openBrowserCommand = %q %v", name, args)
			}
		})
	}
}

func TestOpenBrowser_UsesStartCommand(t *testing.T) {
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	var gotName string
	var gotArgs []string
	startCommand = func(name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	if err := openBrowser("http://example.com"); err != nil {
		t.Fatalf("openBrowser: %v", err)
	}

	if gotName == "" || len(gotArgs) == 0 {
		t.Fatalf("startCommand not invoked: %q %v", gotName, gotArgs)
	}
}
