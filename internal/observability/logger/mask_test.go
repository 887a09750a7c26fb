package logger

import "testing"

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskCookie(t *testing.T) {
	got := MaskCookie("session=abcdef1234; other=xyz")
	want := "session=****1234; other=****xyz"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"password": "hunter2",
		"token":    "abc12345",
		"nested": map[string]any{
			"api_key": "key_12345678",
		},
	}
	masked := MaskJSON(input)
	if masked["password"] != "****ter2" {
		t.Fatalf("expected masked password, got %v", masked["password"])
	}
	if masked["token"] != "****2345" {
		t.Fatalf("expected masked token, got %v", masked["token"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["api_key"] != "****5678" {
		t.Fatalf("expected masked api_key, got %v", nested["api_key"])
	}
}

func TestMaskJSONCardFields(t *testing.T) {
	input := map[string]any{
		"card_number":     "4111111111111111",
		"card_cvv":        "123",
		"card_expiration": "2028/01",
		"payer_email":     "buyer@example.com",
	}
	masked := MaskJSON(input)
	if masked["card_number"] != "****1111" {
		t.Fatalf("expected masked card number, got %v", masked["card_number"])
	}
	if masked["card_cvv"] != "****123" {
		t.Fatalf("expected masked cvv, got %v", masked["card_cvv"])
	}
	if masked["card_expiration"] != "****8/01" {
		t.Fatalf("expected masked expiration, got %v", masked["card_expiration"])
	}
	if masked["payer_email"] != "buyer@example.com" {
		t.Fatalf("email is not sensitive, got %v", masked["payer_email"])
	}
}
