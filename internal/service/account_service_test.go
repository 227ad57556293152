package service

import (
	"context"
	"errors"
	"testing"

	"serviprox/internal/store"

	"go.uber.org/zap"
)

func newAccountFixture() (AccountService, store.KV) {
	kv := store.NewMemoryStore()
	return NewAccountService(kv, zap.NewNop()), kv
}

func TestAccountService_SaveTrimsAndLoads(t *testing.T) {
	svc, kv := newAccountFixture()
	ctx := context.Background()

	err := svc.SaveProfile(ctx, Profile{
		FirstName: "  Laura ",
		LastName:  "Méndez  ",
		Email:     " laura@serviprox.co ",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := svc.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Profile{FirstName: "Laura", LastName: "Méndez", Email: "laura@serviprox.co"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// Each field lands under its own scalar key
	first, err := kv.Get(ctx, ProfileFirstNameKey)
	if err != nil || first != "Laura" {
		t.Fatalf("expected %q under %s, got %q (%v)", "Laura", ProfileFirstNameKey, first, err)
	}
}

func TestAccountService_LoadMissingFieldsAsEmpty(t *testing.T) {
	svc, kv := newAccountFixture()
	ctx := context.Background()

	if err := kv.Set(ctx, ProfileEmailKey, "solo@serviprox.co"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := svc.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.FirstName != "" || got.LastName != "" || got.Email != "solo@serviprox.co" {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func validStep1() RegistrationStep1 {
	return RegistrationStep1{
		FirstName:   "Laura",
		LastName:    "Méndez",
		Country:     "Colombia",
		Phone:       "+573001112233",
		ProfileType: "cliente",
	}
}

func validStep2() RegistrationStep2 {
	return RegistrationStep2{
		BirthDate:       "1995-06-14",
		Gender:          "F",
		DocumentType:    "CC",
		DocumentNumber:  "1020304050",
		Email:           "laura@serviprox.co",
		Password:        "secreta1",
		ConfirmPassword: "secreta1",
	}
}

func TestValidateStep1(t *testing.T) {
	if verr := ValidateStep1(validStep1()); verr != nil {
		t.Fatalf("expected valid step, got %v", verr.Messages())
	}

	verr := ValidateStep1(RegistrationStep1{})
	if verr == nil {
		t.Fatal("expected a validation error")
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected name, surname and profile type violations, got %v", verr.Messages())
	}

	// The phone is optional but checked when present
	s := validStep1()
	s.Phone = "123"
	verr = ValidateStep1(s)
	if verr == nil || len(verr.Fields) != 1 || verr.Fields[0].Field != "phone" {
		t.Fatalf("expected only the phone violation, got %v", verr)
	}

	s.Phone = ""
	if verr := ValidateStep1(s); verr != nil {
		t.Fatalf("expected the empty phone to pass, got %v", verr.Messages())
	}
}

func TestValidateStep1_PhoneFormats(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+573001112233", true},
		{"3001112233", true},
		{"+12345678901234", false}, // 14 digits
		{"300111223", false},       // 9 digits
		{"+57 300 111 2233", false},
		{"abc1112233", false},
	}
	for _, c := range cases {
		s := validStep1()
		s.Phone = c.phone
		verr := ValidateStep1(s)
		if c.ok && verr != nil {
			t.Errorf("phone %q: expected valid, got %v", c.phone, verr.Messages())
		}
		if !c.ok && verr == nil {
			t.Errorf("phone %q: expected invalid", c.phone)
		}
	}
}

func TestValidateStep2(t *testing.T) {
	if verr := ValidateStep2(validStep2()); verr != nil {
		t.Fatalf("expected valid step, got %v", verr.Messages())
	}

	s := validStep2()
	s.Email = "no-es-correo"
	if verr := ValidateStep2(s); verr == nil || verr.Fields[0].Field != "email" {
		t.Fatalf("expected an email violation, got %v", verr)
	}

	s = validStep2()
	s.Password = "corta"
	s.ConfirmPassword = "corta"
	if verr := ValidateStep2(s); verr == nil || verr.Fields[0].Field != "password" {
		t.Fatalf("expected a password length violation, got %v", verr)
	}

	s = validStep2()
	s.ConfirmPassword = "distinta1"
	if verr := ValidateStep2(s); verr == nil || verr.Fields[0].Field != "confirm_password" {
		t.Fatalf("expected a confirmation mismatch violation, got %v", verr)
	}
}

func TestRegistrationFlow_HappyPath(t *testing.T) {
	flow := NewRegistrationFlow()

	if flow.State() != RegistrationStep1State {
		t.Fatalf("expected step1, got %s", flow.State())
	}
	if err := flow.Next(validStep1()); err != nil {
		t.Fatalf("next: %v", err)
	}
	if flow.State() != RegistrationStep2State {
		t.Fatalf("expected step2, got %s", flow.State())
	}
	if err := flow.Submit(validStep2()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if flow.State() != RegistrationSubmitted {
		t.Fatalf("expected submitted, got %s", flow.State())
	}

	s1, s2, err := flow.Form()
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if s1.FirstName != "Laura" || s2.Email != "laura@serviprox.co" {
		t.Fatalf("unexpected form: %+v %+v", s1, s2)
	}
}

func TestRegistrationFlow_BackKeepsIdentity(t *testing.T) {
	flow := NewRegistrationFlow()

	if err := flow.Next(validStep1()); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := flow.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if flow.State() != RegistrationStep1State {
		t.Fatalf("expected step1 after back, got %s", flow.State())
	}

	// Forward again works
	if err := flow.Next(validStep1()); err != nil {
		t.Fatalf("next after back: %v", err)
	}
	if err := flow.Submit(validStep2()); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestRegistrationFlow_GuardsInvalidTransitions(t *testing.T) {
	flow := NewRegistrationFlow()

	if err := flow.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("back from step1: expected ErrInvalidTransition, got %v", err)
	}
	if err := flow.Submit(validStep2()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit from step1: expected ErrInvalidTransition, got %v", err)
	}
	if _, _, err := flow.Form(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("form before submission: expected ErrInvalidTransition, got %v", err)
	}

	if err := flow.Next(validStep1()); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := flow.Next(validStep1()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("next from step2: expected ErrInvalidTransition, got %v", err)
	}

	if err := flow.Submit(validStep2()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := flow.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("back after submission: expected ErrInvalidTransition, got %v", err)
	}
}

func TestRegistrationFlow_InvalidStepDoesNotAdvance(t *testing.T) {
	flow := NewRegistrationFlow()

	err := flow.Next(RegistrationStep1{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if flow.State() != RegistrationStep1State {
		t.Fatalf("expected to stay in step1, got %s", flow.State())
	}

	if err := flow.Next(validStep1()); err != nil {
		t.Fatalf("next: %v", err)
	}
	err = flow.Submit(RegistrationStep2{})
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if flow.State() != RegistrationStep2State {
		t.Fatalf("expected to stay in step2, got %s", flow.State())
	}
}
