package session

import (
	"strings"
	"testing"
)

func TestCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}

	encoded := codec.Encode(id)
	if !strings.HasPrefix(encoded, id+".") {
		t.Errorf("encoded value should start with the session ID: %q", encoded)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded != id {
		t.Errorf("decoded = %q, want %q", decoded, id)
	}
}

func TestCodec_Decode_TamperedID(t *testing.T) {
	codec := NewCodec("test-secret")

	encoded := codec.Encode("session-a")
	tampered := "session-b" + strings.TrimPrefix(encoded, "session-a")

	if _, err := codec.Decode(tampered); err == nil {
		t.Error("Decode should reject a cookie with a swapped session ID")
	}
}

func TestCodec_Decode_TamperedSignature(t *testing.T) {
	codec := NewCodec("test-secret")

	encoded := codec.Encode("session-a")
	tampered := encoded[:len(encoded)-1] + "0"
	if tampered == encoded {
		tampered = encoded[:len(encoded)-1] + "1"
	}

	if _, err := codec.Decode(tampered); err == nil {
		t.Error("Decode should reject a cookie with a modified signature")
	}
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	encoded := NewCodec("secret-one").Encode("session-a")

	if _, err := NewCodec("secret-two").Decode(encoded); err == nil {
		t.Error("Decode should reject a cookie signed with a different secret")
	}
}

func TestCodec_Decode_Malformed(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, value := range []string{"", "no-separator", ".only-signature"} {
		if _, err := codec.Decode(value); err == nil {
			t.Errorf("Decode(%q) should fail", value)
		}
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if len(id) != 64 {
			t.Fatalf("NewID() length = %d, want 64 hex chars", len(id))
		}
		if seen[id] {
			t.Fatalf("NewID() generated a duplicate: %s", id)
		}
		seen[id] = true
	}
}
