package utils

import "testing"

type sampleForm struct {
	Username string `validate:"required,usernameok"`
	Email    string `validate:"required,emailok"`
	Role     string `validate:"required,oneof=freelancer business"`
	Password string `validate:"required,pwdmin"`
	Confirm  string `validate:"required,eqfield=Password"`
	Website  string `validate:"urlok"`
}

func validSample() sampleForm {
	return sampleForm{
		Username: "jane_doe",
		Email:    "jane@mail.test",
		Role:     "freelancer",
		Password: "hunter22",
		Confirm:  "hunter22",
		Website:  "https://jane.test",
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	s := validSample()
	if err := ValidateStruct(&s); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidateStruct_Rules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*sampleForm)
	}{
		{"missing username", func(s *sampleForm) { s.Username = "" }},
		{"username too short", func(s *sampleForm) { s.Username = "ab" }},
		{"username bad chars", func(s *sampleForm) { s.Username = "jane doe!" }},
		{"bad email", func(s *sampleForm) { s.Email = "not-an-email" }},
		{"bad role", func(s *sampleForm) { s.Role = "admin" }},
		{"short password", func(s *sampleForm) { s.Password = "abc"; s.Confirm = "abc" }},
		{"confirmation mismatch", func(s *sampleForm) { s.Confirm = "different" }},
		{"bad url", func(s *sampleForm) { s.Website = "ftp://jane.test" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSample()
			tc.mutate(&s)
			if err := ValidateStruct(&s); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateStruct_EmptyOptionalURLAllowed(t *testing.T) {
	s := validSample()
	s.Website = ""
	if err := ValidateStruct(&s); err != nil {
		t.Fatalf("empty optional url must pass, got %v", err)
	}
}
