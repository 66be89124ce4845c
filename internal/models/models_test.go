package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	id, err := uuid.Parse(base.ID)
	if err != nil {
		t.Fatalf("expected a uuid, got %q: %v", base.ID, err)
	}
	if id.Version() != 7 {
		t.Fatalf("expected a version 7 uuid, got %d", id.Version())
	}
}

func TestBaseModelIDsSortByCreation(t *testing.T) {
	var first, second BaseModel
	if err := first.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if err := second.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if first.ID >= second.ID {
		t.Fatalf("expected %q to sort before %q", first.ID, second.ID)
	}
}

func TestBaseModelBeforeCreateKeepsExistingID(t *testing.T) {
	base := BaseModel{ID: "fixed"}
	if err := base.BeforeCreate(nil); err != nil {
		t.Fatalf("before create: %v", err)
	}
	if base.ID != "fixed" {
		t.Fatalf("expected ID to be preserved, got %q", base.ID)
	}
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"user", func() *BaseModel {
			u := &User{}
			return &u.BaseModel
		}},
		{"email_verification", func() *BaseModel {
			v := &EmailVerification{}
			return &v.BaseModel
		}},
		{"password_reset_token", func() *BaseModel {
			p := &PasswordResetToken{}
			return &p.BaseModel
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			if err := model.BeforeCreate(nil); err != nil {
				t.Fatalf("before create: %v", err)
			}
			if model.ID == "" {
				t.Fatal("expected ID to be generated")
			}
		})
	}
}

func TestUserEmailVerified(t *testing.T) {
	var nilUser *User
	if nilUser.EmailVerified() {
		t.Fatal("nil user must not be verified")
	}

	u := &User{}
	if u.EmailVerified() {
		t.Fatal("expected unverified user")
	}

	now := time.Now()
	u.EmailVerifiedAt = &now
	if !u.EmailVerified() {
		t.Fatal("expected verified user")
	}
}
