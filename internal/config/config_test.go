package config

import "testing"

func TestSplitOrigins(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"http://localhost:8100", []string{"http://localhost:8100"}},
		{"https://app.serviprox.co, https://serviprox.co", []string{"https://app.serviprox.co", "https://serviprox.co"}},
		{" , ,", []string{}},
		{"", []string{}},
	}
	for _, c := range cases {
		got := splitOrigins(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitOrigins(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range c.want {
			if got[i] != c.want[i] {
				t.Errorf("splitOrigins(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.serviprox.co,https://serviprox.co")

	cfg := Load()
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.AllowedOrigins[0] != "https://app.serviprox.co" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port == "" || cfg.Store.Backend == "" {
		t.Fatalf("expected defaults to be applied, got %+v", cfg)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		t.Fatal("expected a default CORS origin")
	}
}
