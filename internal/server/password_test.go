package server

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("sekrit")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "sekrit" {
		t.Fatalf("password stored in the clear")
	}
	if !verifyPassword(hash, "sekrit") {
		t.Fatalf("correct password rejected")
	}
	if verifyPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
	if verifyPassword("garbage", "sekrit") {
		t.Fatalf("malformed hash accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, _ := hashPassword("sekrit")
	second, _ := hashPassword("sekrit")
	if first == second {
		t.Fatalf("two hashes of the same password must differ")
	}
}
