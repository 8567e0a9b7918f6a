package router

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value   string
		typ     string
		wantErr bool
	}{
		{"123", "int", false},
		{"-5", "int", false},
		{"abc", "int", true},
		{"5", "uint", false},
		{"-5", "uint", true},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", "uuid", false},
		{"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", "uuid", true},
		{"6ba7b810", "uuid", true},
		{"anything", "string", false},
		{"anything", "", false},
		{"anything", "custom", false},
	}

	for _, tt := range tests {
		err := ValidateParam(tt.value, tt.typ)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateParam(%q, %q) error = %v, wantErr %v", tt.value, tt.typ, err, tt.wantErr)
		}
	}
}

func TestDecodeParams(t *testing.T) {
	type target struct {
		ID      int       `param:"id"`
		Page    uint16    `param:"page"`
		Slug    string    `param:"slug"`
		Draft   bool      `param:"draft"`
		Rest    []string  `param:"rest"`
		Owner   uuid.UUID `param:"owner"`
		Ignored string
	}

	owner := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	var got target
	err := DecodeParams(map[string]string{
		"id":    "42",
		"page":  "3",
		"slug":  "hello",
		"draft": "true",
		"rest":  "a/b/c",
		"owner": owner,
	}, &got)
	if err != nil {
		t.Fatalf("DecodeParams() error = %v", err)
	}

	want := target{
		ID:    42,
		Page:  3,
		Slug:  "hello",
		Draft: true,
		Rest:  []string{"a", "b", "c"},
		Owner: uuid.MustParse(owner),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeParams() = %+v, want %+v", got, want)
	}
}

func TestDecodeParamsErrors(t *testing.T) {
	var notPtr struct{}
	if err := DecodeParams(nil, notPtr); err == nil {
		t.Error("non-pointer target should fail")
	}

	n := 0
	if err := DecodeParams(nil, &n); err == nil {
		t.Error("pointer to non-struct should fail")
	}

	var bad struct {
		ID int `param:"id"`
	}
	if err := DecodeParams(map[string]string{"id": "x"}, &bad); err == nil {
		t.Error("invalid int should fail")
	}

	var overflow struct {
		N int8 `param:"n"`
	}
	if err := DecodeParams(map[string]string{"n": "300"}, &overflow); err == nil {
		t.Error("int8 overflow should fail")
	}

	if err := DecodeParams(nil, nil); err != nil {
		t.Errorf("nil target error = %v", err)
	}
}
