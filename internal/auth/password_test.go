package auth

import "testing"

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"observer_01", true},
		{"ab", false},
		{"has space", false},
		{"кириллица", false},
		{"a234567890123456789012345678901234567890123456789", true},
		{"a2345678901234567890123456789012345678901234567890x", false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err == nil) != tt.valid {
				t.Fatalf("ValidateUsername(%q) error = %v, want valid=%v", tt.username, err, tt.valid)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("expected 6 character password to pass, got %v", err)
	}
}
