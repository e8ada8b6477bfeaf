package secrets

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	cipher, err := NewCipher(bytes.Repeat([]byte{1}, 32))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	sealed, err := cipher.Seal([]byte(`{"password":"hunter2"}`))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("hunter2")) {
		t.Fatalf("plaintext visible in envelope")
	}

	plain, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != `{"password":"hunter2"}` {
		t.Fatalf("round trip mismatch: %s", plain)
	}
}

func TestCipherRejectsBadKey(t *testing.T) {
	if _, err := NewCipher([]byte("short")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("want ErrInvalidKey, got %v", err)
	}
	if _, err := NewCipherFromHex("zz"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("want ErrInvalidKey for bad hex, got %v", err)
	}
}

func TestCipherFromHex(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{7}, 32))
	cipher, err := NewCipherFromHex(key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	sealed, err := cipher.Seal([]byte("v"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	plain, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != "v" {
		t.Fatalf("round trip mismatch: %s", plain)
	}
}

func TestCipherRejectsTamperedEnvelope(t *testing.T) {
	cipher, err := NewCipher(bytes.Repeat([]byte{3}, 32))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	sealed, err := cipher.Seal([]byte("v"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := cipher.Open(sealed); !errors.Is(err, ErrCipherText) {
		t.Fatalf("want ErrCipherText, got %v", err)
	}
	if _, err := cipher.Open([]byte("tiny")); !errors.Is(err, ErrCipherText) {
		t.Fatalf("want ErrCipherText for short envelope, got %v", err)
	}
}
