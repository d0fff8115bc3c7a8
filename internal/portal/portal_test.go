package portal

import "testing"

func TestParseCookieHeader(t *testing.T) {
	cookies := ParseCookieHeader("WORKS_SES=abc123; NEO_SES= xyz ; bad;=novalue; trailing=v;")
	if len(cookies) != 3 {
		t.Fatalf("cookies = %d: %+v", len(cookies), cookies)
	}
	if cookies[0].Name != "WORKS_SES" || cookies[0].Value != "abc123" {
		t.Errorf("cookies[0] = %+v", cookies[0])
	}
	if cookies[1].Name != "NEO_SES" || cookies[1].Value != "xyz" {
		t.Errorf("cookies[1] = %+v", cookies[1])
	}
	if cookies[2].Name != "trailing" || cookies[2].Value != "v" {
		t.Errorf("cookies[2] = %+v", cookies[2])
	}

	if got := ParseCookieHeader(""); got != nil {
		t.Errorf("empty header = %+v", got)
	}
}
