package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("missing-locale")
	if fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if GetCatalog("") != base {
		t.Fatal("expected empty locale to resolve to en-US")
	}
}

func TestGetCatalogMatchesRegionalLocale(t *testing.T) {
	cat := GetCatalog("pt-BR")
	if got := cat.Format(CodeNotYourTurn, nil); got != "Não é mais a sua vez." {
		t.Fatalf("pt-BR message = %q", got)
	}
}

func TestFormatRendersReason(t *testing.T) {
	cat := GetCatalog("en-US")
	got := cat.Format(CodeInvalidMove, map[string]string{"Reason": "word not in dictionary"})
	if got != "Move rejected: word not in dictionary." {
		t.Fatalf("message = %q", got)
	}
	if got := cat.Format(CodeInvalidMove, nil); got != "Move rejected." {
		t.Fatalf("message without reason = %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("en", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("en", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}
