package resp

import (
	"errors"
	"testing"
)

func TestAsInt(t *testing.T) {
	n, err := IntegerValue(42).AsInt()
	if err != nil {
		t.Fatalf("AsInt() error = %v", err)
	}
	if n != 42 {
		t.Errorf("AsInt() = %d, want 42", n)
	}

	_, err = BulkStringValue([]byte("42")).AsInt()
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("AsInt() on bulk string error = %v, want *TypeMismatchError", err)
	}
	if mismatch.Want != TypeInteger || mismatch.Got != TypeBulkString {
		t.Errorf("AsInt() mismatch = %v", mismatch)
	}
}

func TestAsString(t *testing.T) {
	s, err := SimpleStringValue("OK").AsString()
	if err != nil || s != "OK" {
		t.Errorf("AsString() on simple string = %q, %v", s, err)
	}

	s, err = BulkStringValue([]byte("payload")).AsString()
	if err != nil || s != "payload" {
		t.Errorf("AsString() on bulk string = %q, %v", s, err)
	}

	// A null bulk string cannot silently become "".
	_, err = NullBulkString().AsString()
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("AsString() on null bulk error = %v, want *TypeMismatchError", err)
	}
	if !mismatch.Null {
		t.Error("AsString() mismatch should be marked null")
	}

	_, err = IntegerValue(1).AsString()
	if !errors.As(err, &mismatch) {
		t.Errorf("AsString() on integer error = %v, want *TypeMismatchError", err)
	}
}

func TestAsBytesNullIsData(t *testing.T) {
	b, err := NullBulkString().AsBytes()
	if err != nil {
		t.Fatalf("AsBytes() on null bulk error = %v", err)
	}
	if b != nil {
		t.Errorf("AsBytes() on null bulk = %v, want nil", b)
	}

	b, err = BulkStringValue([]byte{}).AsBytes()
	if err != nil {
		t.Fatalf("AsBytes() on empty bulk error = %v", err)
	}
	if b == nil {
		t.Error("AsBytes() on empty bulk should be non-nil")
	}
}

func TestAsArrayNullIsData(t *testing.T) {
	vs, err := NullArray().AsArray()
	if err != nil {
		t.Fatalf("AsArray() on null array error = %v", err)
	}
	if vs != nil {
		t.Errorf("AsArray() on null array = %v, want nil", vs)
	}

	vs, err = ArrayValue().AsArray()
	if err != nil {
		t.Fatalf("AsArray() on empty array error = %v", err)
	}
	if vs == nil {
		t.Error("AsArray() on empty array should be non-nil")
	}

	_, err = SimpleStringValue("OK").AsArray()
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("AsArray() on simple string error = %v, want *TypeMismatchError", err)
	}
}

func TestAsStatus(t *testing.T) {
	s, err := SimpleStringValue("OK").AsStatus()
	if err != nil || s != "OK" {
		t.Errorf("AsStatus() = %q, %v", s, err)
	}

	_, err = BulkStringValue([]byte("OK")).AsStatus()
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("AsStatus() on bulk string error = %v, want *TypeMismatchError", err)
	}
}

func TestErrorValueNarrowsToReplyError(t *testing.T) {
	v := ErrorValue("WRONGTYPE Operation against a key holding the wrong kind of value")

	var replyErr *ReplyError
	if _, err := v.AsInt(); !errors.As(err, &replyErr) {
		t.Errorf("AsInt() on error value = %v, want *ReplyError", err)
	}
	if _, err := v.AsString(); !errors.As(err, &replyErr) {
		t.Errorf("AsString() on error value = %v, want *ReplyError", err)
	}
	if _, err := v.AsArray(); !errors.As(err, &replyErr) {
		t.Errorf("AsArray() on error value = %v, want *ReplyError", err)
	}
	if replyErr.Message != "WRONGTYPE Operation against a key holding the wrong kind of value" {
		t.Errorf("ReplyError carries %q", replyErr.Message)
	}
}

func TestIsNil(t *testing.T) {
	if !NullBulkString().IsNil() || !NullArray().IsNil() {
		t.Error("null values should report IsNil")
	}
	if BulkStringValue(nil).IsNil() || ArrayValue().IsNil() || IntegerValue(0).IsNil() {
		t.Error("non-null values should not report IsNil")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{SimpleStringValue("OK"), "OK"},
		{IntegerValue(-3), "-3"},
		{NullBulkString(), "(nil)"},
		{ArrayValue(IntegerValue(1), BulkStringValue([]byte("a"))), "[1, a]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
