package ui

import "testing"

func TestThemeCycle(t *testing.T) {
	names := ThemeNames()
	if len(names) < 2 {
		t.Fatalf("ThemeNames = %v, want at least 2 themes", names)
	}
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestGetTheme_FallsBackToDracula(t *testing.T) {
	if got := GetTheme("nope").Name; got != "Dracula" {
		t.Fatalf("GetTheme(nope).Name = %q, want Dracula", got)
	}
}

func TestThemes_DefineEveryStateColor(t *testing.T) {
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		for _, state := range []string{"idle", "loading", "retrying", "success", "failed", "offline"} {
			if theme.StateColors[state] == "" {
				t.Fatalf("theme %s has no color for %s", name, state)
			}
		}
	}
}
