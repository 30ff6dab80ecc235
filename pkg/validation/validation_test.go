package validation

import (
	"errors"
	"strings"
	"testing"
	_ "time/tzdata"
)

type window struct {
	Start int `json:"start" validate:"min=0,max=23"`
	End   int `json:"end" validate:"min=1,max=24"`
}

type request struct {
	Zone   string   `json:"zone" validate:"required"`
	Hour   int      `json:"base_hour" validate:"min=0,max=23"`
	Window window   `json:"window"`
	Names  []string `json:"names" validate:"dive,required"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    request
		wantMsg string
	}{
		{"valid", request{Zone: "UTC", Hour: 9, Window: window{Start: 9, End: 18}}, ""},
		{"missing zone", request{Hour: 9, Window: window{Start: 9, End: 18}}, "zone is required"},
		{"hour too large", request{Zone: "UTC", Hour: 24, Window: window{Start: 9, End: 18}}, "base_hour must be at most 23"},
		{"nested field", request{Zone: "UTC", Hour: 1, Window: window{Start: 9, End: 0}}, "window.end must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.data)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Struct(%+v) = %v, want nil", tt.data, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Struct(%+v) = %v, want ErrInvalid", tt.data, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Struct(%+v) = %q, want it to mention %q", tt.data, err, tt.wantMsg)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	var req request
	err := Decode(strings.NewReader(`{"zone":"Asia/Tokyo","base_hour":10,"window":{"start":9,"end":18}}`), &req)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.Zone != "Asia/Tokyo" || req.Hour != 10 {
		t.Errorf("Decode = %+v", req)
	}

	for _, body := range []string{`{"zone":`, `{"zone":"UTC","bogus":1}`, `{"base_hour":3}`} {
		var r request
		if err := Decode(strings.NewReader(body), &r); !errors.Is(err, ErrInvalid) {
			t.Errorf("Decode(%s) error = %v, want ErrInvalid", body, err)
		}
	}
}

func TestVar(t *testing.T) {
	if err := Var("zone", "Europe/Paris", "timezone"); err != nil {
		t.Errorf("Var(Europe/Paris, timezone) = %v", err)
	}
	if err := Var("zone", "Not/AZone", "timezone"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Var(Not/AZone, timezone) = %v, want ErrInvalid", err)
	}

	err := Var("zone", "", "required,max=64")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Var(\"\", required) = %v, want ErrInvalid", err)
	}
	if want := "zone is required"; !strings.Contains(err.Error(), want) {
		t.Errorf("Var(\"\", required) = %q, want it to contain %q", err, want)
	}
}
