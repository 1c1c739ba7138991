package sources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func tencentTestServer(t *testing.T, fullQuote string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "s_shau9999") {
			_, _ = w.Write([]byte(`v_s_shau9999="1~黄金Au9999~shau9999~550.45~1.45~0.26~0";`))
			return
		}
		if fullQuote == "" {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(fullQuote))
	}))
}

func TestTencentFetch(t *testing.T) {
	// Full quote: field 4 prev close, 5 open, 33 high, 34 low.
	fields := make([]string, 40)
	for i := range fields {
		fields[i] = "0"
	}
	fields[4] = "549.00"
	fields[5] = "550.00"
	fields[33] = "551.20"
	fields[34] = "548.90"
	full := `v_shau9999="` + strings.Join(fields, "~") + `";`

	srv := tencentTestServer(t, full)
	defer srv.Close()

	tc := &Tencent{
		qc:        testClient(),
		simpleURL: srv.URL + "/q?s_shau9999",
		fullURL:   srv.URL + "/q?shau9999",
	}
	rd, err := tc.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if rd.Price != 550.45 {
		t.Errorf("Price = %v, want 550.45", rd.Price)
	}
	if rd.Change != 1.45 {
		t.Errorf("Change = %v, want 1.45", rd.Change)
	}
	if rd.PrevClose != 549.00 {
		t.Errorf("PrevClose = %v, want 549.00", rd.PrevClose)
	}
	if rd.Open != 550.00 {
		t.Errorf("Open = %v, want 550.00", rd.Open)
	}
	if rd.High != 551.20 {
		t.Errorf("High = %v, want 551.20", rd.High)
	}
	if rd.Low != 548.90 {
		t.Errorf("Low = %v, want 548.90", rd.Low)
	}
}

func TestTencentFetchSurvivesFullQuoteFailure(t *testing.T) {
	srv := tencentTestServer(t, "")
	defer srv.Close()

	tc := &Tencent{
		qc:        testClient(),
		simpleURL: srv.URL + "/q?s_shau9999",
		fullURL:   srv.URL + "/q?shau9999",
	}
	rd, err := tc.Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	// Simple quote alone: day range falls back to the current price.
	if rd.Price != 550.45 {
		t.Errorf("Price = %v, want 550.45", rd.Price)
	}
	if rd.Open != 550.45 || rd.High != 550.45 || rd.Low != 550.45 {
		t.Errorf("Open/High/Low = %v/%v/%v, want all 550.45", rd.Open, rd.High, rd.Low)
	}
	if rd.PrevClose != 549.00 {
		t.Errorf("PrevClose = %v, want 549.00 (price - change)", rd.PrevClose)
	}
}

func TestTencentFetchRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no quotes", `v_s_shau9999=;`},
		{"too few fields", `v_s_shau9999="1~x~y";`},
		{"zero price", `v_s_shau9999="1~x~y~0~0~0";`},
		{"non-numeric price", `v_s_shau9999="1~x~y~abc~0~0";`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tc := &Tencent{qc: testClient(), simpleURL: srv.URL, fullURL: srv.URL}
			if _, err := tc.Fetch(t.Context()); err == nil {
				t.Error("Fetch expected error, got nil")
			}
		})
	}
}

func TestFloatSigned(t *testing.T) {
	tests := []struct {
		field string
		want  float64
	}{
		{"1.45", 1.45},
		{"-1.45", -1.45},
		{"0", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := floatSigned(tt.field); got != tt.want {
			t.Errorf("floatSigned(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}
