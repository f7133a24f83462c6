package domain

import "testing"

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name    string
		r       Requester
		owner   ID
		allowed bool
	}{
		{"owner", Requester{UserID: 7, Role: RoleUser}, 7, true},
		{"other user", Requester{UserID: 8, Role: RoleUser}, 7, false},
		{"admin", Requester{UserID: 1, Role: RoleAdmin}, 7, true},
		{"anonymous", Requester{}, 7, false},
		{"anonymous against unowned", Requester{}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.r, tc.owner)
			if tc.allowed && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tc.allowed && !IsUnauthorized(err) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(Requester{UserID: 1, Role: RoleAdmin}); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	err := RequireAdmin(Requester{UserID: 1, Role: RoleUser})
	if !IsUnauthorized(err) || err.Error() != "Admin access required" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFieldErrors(t *testing.T) {
	if got := FieldErrors(NotFoundError{Resource: "Bus"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	got := FieldErrors(ValidationError{Field: "email", Msg: "bad"})
	if len(got) != 1 || got[0].Field != "email" {
		t.Fatalf("unexpected %v", got)
	}
	many := ValidationError{Fields: []FieldError{{Field: "a", Msg: "x"}, {Field: "b", Msg: "y"}}}
	if len(FieldErrors(many)) != 2 || many.Error() != "a: x" {
		t.Fatalf("unexpected %v / %q", FieldErrors(many), many.Error())
	}
}
