package req

import (
	"net/http/httptest"
	"strings"
	"testing"

	"moonhub/internal/pkg/errs"
)

func TestBindJSON(t *testing.T) {
	type payload struct {
		Rank string `json:"rank"`
	}

	tests := map[string]struct {
		contentType string
		body        string
		wantCode    int
	}{
		"valid":          {contentType: "application/json", body: `{"rank":"admin"}`},
		"wrong type":     {contentType: "text/plain", body: `{"rank":"admin"}`, wantCode: errs.ErrUnsupportedMediaType},
		"syntax error":   {contentType: "application/json", body: `{"rank":`, wantCode: errs.ErrInvalidJSONFormat},
		"unknown field":  {contentType: "application/json", body: `{"role":"admin"}`, wantCode: errs.ErrInvalidJSONFormat},
		"trailing value": {contentType: "application/json", body: `{"rank":"a"} {"rank":"b"}`, wantCode: errs.ErrExtraContentInBody},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", tc.contentType)

			var dst payload
			err := BindJSON(r, &dst)

			if tc.wantCode == 0 {
				if err != nil {
					t.Fatalf("BindJSON() error = %v", err)
				}
				if dst.Rank != "admin" {
					t.Errorf("Rank = %q, want admin", dst.Rank)
				}
				return
			}
			if err == nil || err.Code != tc.wantCode {
				t.Errorf("BindJSON() error = %v, want code %d", err, tc.wantCode)
			}
		})
	}
}

func TestReadBodyLimit(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("PUT", "/", strings.NewReader("0123456789"))

	body, err := ReadBody(w, r, 10)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if string(body) != "0123456789" {
		t.Errorf("body = %q", body)
	}

	r = httptest.NewRequest("PUT", "/", strings.NewReader("0123456789A"))
	if _, err := ReadBody(w, r, 10); err == nil || err.Code != errs.ErrAvatarTooLarge {
		t.Errorf("ReadBody() error = %v, want code %d", err, errs.ErrAvatarTooLarge)
	}
}
