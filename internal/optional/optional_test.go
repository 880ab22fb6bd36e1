package optional

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNoneAndSome(t *testing.T) {
	t.Run("None has no indirect", func(t *testing.T) {
		v := None[time.Duration]()
		if v.indirect != nil {
			t.Fatal("should be nil")
		}
	})

	t.Run("Some wraps zero nonpointer values", func(t *testing.T) {
		v := Some(time.Duration(0))
		if v.indirect == nil || *v.indirect != 0 {
			t.Fatal("unexpected indirect")
		}
	})

	t.Run("Some wraps nonnil pointers", func(t *testing.T) {
		underlying := "h2"
		v := Some(&underlying)
		if v.indirect == nil || *v.indirect == nil || **v.indirect != "h2" {
			t.Fatal("unexpected indirect")
		}
	})

	t.Run("Some of a nil pointer is None", func(t *testing.T) {
		var underlying *string
		if v := Some(underlying); !v.IsNone() {
			t.Fatal("expected none")
		}
	})
}

func TestJSON(t *testing.T) {
	type record struct {
		ALPN   Value[string] `json:"alpn"`
		TLSSum Value[int64]  `json:"tls_sum"`
	}

	t.Run("marshal", func(t *testing.T) {
		got, err := json.Marshal(record{ALPN: Some("h2")})
		if err != nil {
			t.Fatal(err)
		}
		expect := `{"alpn":"h2","tls_sum":null}`
		if diff := cmp.Diff(expect, string(got)); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("unmarshal", func(t *testing.T) {
		var state record
		if err := json.Unmarshal([]byte(`{"alpn":null,"tls_sum":12345}`), &state); err != nil {
			t.Fatal(err)
		}
		if !state.ALPN.IsNone() {
			t.Fatal("alpn should be none")
		}
		if state.TLSSum.indirect == nil || *state.TLSSum.indirect != 12345 {
			t.Fatal("did not set indirect correctly")
		}
	})

	t.Run("unmarshal with incompatible input", func(t *testing.T) {
		var state record
		err := json.Unmarshal([]byte(`{"tls_sum":[]}`), &state)
		if err == nil {
			t.Fatal("expected an error")
		}
		if state.TLSSum.indirect != nil {
			t.Fatal("should not have set", *state.TLSSum.indirect)
		}
	})
}

func TestUnwrap(t *testing.T) {
	t.Run("panics on an empty value", func(t *testing.T) {
		var err error
		func() {
			defer func() {
				err = recover().(error)
			}()
			None[int]().Unwrap()
		}()
		if !errors.Is(err, ErrEmptyValue) {
			t.Fatal("unexpected err", err)
		}
	})

	t.Run("returns the wrapped value", func(t *testing.T) {
		if v := Some(12345).Unwrap(); v != 12345 {
			t.Fatal("unexpected value", v)
		}
	})

	t.Run("UnwrapOr", func(t *testing.T) {
		if v := None[int]().UnwrapOr(555); v != 555 {
			t.Fatal("unexpected value", v)
		}
		if v := Some(12345).UnwrapOr(555); v != 12345 {
			t.Fatal("unexpected value", v)
		}
	})
}

func TestOr(t *testing.T) {
	older := Some("TLS1.2")
	if got := None[string]().Or(older); got.Unwrap() != "TLS1.2" {
		t.Fatal("expected fallback", got)
	}
	if got := Some("TLS1.3").Or(older); got.Unwrap() != "TLS1.3" {
		t.Fatal("expected receiver", got)
	}
}

func TestEqual(t *testing.T) {
	type summary struct {
		Version string
		Chain   []string
	}
	a := Some(summary{Version: "TLS1.3", Chain: []string{"leaf"}})
	b := Some(summary{Version: "TLS1.3", Chain: []string{"leaf"}})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatal(diff)
	}
	if a.Equal(None[summary]()) {
		t.Fatal("some should differ from none")
	}
	if !None[summary]().Equal(None[summary]()) {
		t.Fatal("none should equal none")
	}
}
