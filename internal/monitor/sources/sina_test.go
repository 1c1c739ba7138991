package sources

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSinaFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(`var hq_str_gds_au9999="Au9999,550.45,549.00,550.00,551.20,548.90,550.40,550.50";`))
	}))
	defer srv.Close()

	s := &Sina{qc: testClient(), baseURL: srv.URL}
	rd, err := s.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if rd.Price != 550.45 {
		t.Errorf("Price = %v, want 550.45", rd.Price)
	}
	if rd.PrevClose != 549.00 {
		t.Errorf("PrevClose = %v, want 549.00", rd.PrevClose)
	}
	if rd.Open != 550.00 {
		t.Errorf("Open = %v, want 550.00", rd.Open)
	}
	if rd.Change != 1.45 {
		t.Errorf("Change = %v, want 1.45", rd.Change)
	}
	if rd.Source != "sina" {
		t.Errorf("Source = %q, want %q", rd.Source, "sina")
	}
}

func TestSinaFetchRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no quotes", `var hq_str_gds_au9999=;`},
		{"too few fields", `var x="a,b,c";`},
		{"empty price", `var x="Au9999,,549,550,551,548,550,550";`},
		{"zero price", `var x="Au9999,0,549,550,551,548,550,550";`},
		{"non-numeric price", `var x="Au9999,abc,549,550,551,548,550,550";`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := &Sina{qc: testClient(), baseURL: srv.URL}
			if _, err := s.Fetch(t.Context()); err == nil {
				t.Error("Fetch expected error, got nil")
			}
		})
	}
}

func TestSinaFetchDecodesGBK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=GBK")
		// "黄金" in GBK followed by the quote fields.
		payload := append([]byte(`var hq_str_gds_au9999="`), 0xBB, 0xC6, 0xBD, 0xF0)
		payload = append(payload, []byte(`,550.45,549.00,550.00,551.20,548.90,550.40,550.50";`)...)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	s := &Sina{qc: testClient(), baseURL: srv.URL}
	rd, err := s.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if rd.Price != 550.45 {
		t.Errorf("Price = %v, want 550.45", rd.Price)
	}
}

func TestExtractQuoted(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{`var x="a,b,c";`, "a,b,c", false},
		{`"only"`, "only", false},
		{`no quotes at all`, "", true},
		{`"unterminated`, "", true},
	}
	for _, tt := range tests {
		got, err := extractQuoted(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractQuoted(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractQuoted(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFloatOr(t *testing.T) {
	tests := []struct {
		field    string
		fallback float64
		want     float64
	}{
		{"550.45", 0, 550.45},
		{"", 549, 549},
		{"abc", 549, 549},
		{"0", 549, 549},
		{"-1", 549, 549},
		{" 550.45 ", 0, 550.45},
	}
	for _, tt := range tests {
		if got := floatOr(tt.field, tt.fallback); got != tt.want {
			t.Errorf("floatOr(%q, %v) = %v, want %v", tt.field, tt.fallback, got, tt.want)
		}
	}
}
