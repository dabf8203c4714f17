package types

import "testing"

func TestAddressValid(t *testing.T) {
	valid := Address("addr_" + "0123456789abcdef0123456789abcd")
	if !valid.Valid() {
		t.Fatalf("expected %q to be valid", valid)
	}
}

func TestAddressInvalid(t *testing.T) {
	cases := []Address{
		"",
		"addr_short",
		"nopre_0123456789abcdef0123456789abcd",
		Address("addr_" + "0123456789ABCDEF0123456789abcd"),
	}
	for _, c := range cases {
		if c.Valid() {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
