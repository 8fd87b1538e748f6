package songtext

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Evidências ", "evidencias"},
		{"Ana  Carolina", "ana carolina"},
		{"CORAÇÃO", "coracao"},
		{"Tim Maia", "tim maia"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKey(t *testing.T) {
	if Key("Chitãozinho & Xororó", "Evidências") != Key("chitaozinho & xororo", "EVIDENCIAS") {
		t.Fatal("key should be case and accent insensitive")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		artist, title string
		want          string
	}{
		{"Chitãozinho & Xororó", "Evidências", "CHITAOZINHO E XORORO - EVIDENCIAS.mp3"},
		{"Djavan", "Oceano (Ao Vivo)", "DJAVAN - OCEANO AO VIVO.mp3"},
		{"Jota Quest", "Além do Horizonte", "JOTA QUEST - ALEM DO HORIZONTE.mp3"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.artist, tc.title); got != tc.want {
			t.Errorf("SanitizeFilename(%q, %q) = %q, want %q", tc.artist, tc.title, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("ExactMatch", func(t *testing.T) {
		if got := Similarity("djavan oceano", "Djavan - Oceano"); got != 1.0 {
			t.Fatalf("expected 1.0, got %v", got)
		}
	})

	t.Run("PartialMatch", func(t *testing.T) {
		got := Similarity("djavan oceano ao vivo", "djavan oceano")
		if got != 0.5 {
			t.Fatalf("expected 0.5, got %v", got)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		if got := Similarity("tim maia", "djavan oceano"); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})

	t.Run("EmptyWant", func(t *testing.T) {
		if got := Similarity("", "anything"); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})
}
