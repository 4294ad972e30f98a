package main

import "testing"

func TestLocateChunk(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPath  string
		wantCode  string
		wantIndex int
	}{
		{
			name:      "script first",
			args:      []string{"boot.lua", "web", "8080"},
			wantPath:  "boot.lua",
			wantIndex: 0,
		},
		{
			name:      "script after other args",
			args:      []string{"verbose", "svc/boot.lua", "extra"},
			wantPath:  "svc/boot.lua",
			wantIndex: 1,
		},
		{
			name:      "inline chunk",
			args:      []string{`print("hi")`, "ignored"},
			wantCode:  `print("hi")`,
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, idx := locateChunk(tt.args)
			if chunk.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", chunk.Path, tt.wantPath)
			}
			if chunk.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", chunk.Code, tt.wantCode)
			}
			if idx != tt.wantIndex {
				t.Errorf("index = %d, want %d", idx, tt.wantIndex)
			}
		})
	}
}

func TestScriptArgvReachesProgramName(t *testing.T) {
	args := []string{"verbose", "boot.lua", "web"}
	argv := scriptArgv("/sbin/luainit", args)

	want := []string{"/sbin/luainit", "verbose", "boot.lua", "web"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}

	// Anchoring at the shifted script index puts boot.lua at arg[0],
	// verbose at arg[-1] and the program name at arg[-2].
	_, idx := locateChunk(args)
	if got := idx + 1; got != 2 {
		t.Errorf("anchored script index = %d, want 2", got)
	}
}
