package datasource

import (
	"reflect"
	"testing"
)

func TestTokenizeLowercasesAndSplitsOnSeparators(t *testing.T) {
	got := Tokenize([]rune("The Quick-Brown_Fox, jumps!! 123"))
	want := []string{"the", "quick", "brown", "fox", "jumps", "123"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	got := Tokenize([]rune("   ...  "))
	if len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestDecodeBytesUTF8Default(t *testing.T) {
	got := DecodeBytes([]byte("hello"))
	if string(got) != "hello" {
		t.Fatalf("got %q", string(got))
	}
}

func TestDecodeBytesUTF16LE(t *testing.T) {
	// "hi" in UTF-16LE with a BOM.
	raw := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	got := DecodeBytes(raw)
	if string(got) != "hi" {
		t.Fatalf("got %q", string(got))
	}
}

func TestDecodeBytesUTF16BE(t *testing.T) {
	raw := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	got := DecodeBytes(raw)
	if string(got) != "hi" {
		t.Fatalf("got %q", string(got))
	}
}
