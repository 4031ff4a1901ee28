package models

import (
	"testing"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: User{
				Username: "alice_99",
				FullName: "Alice Example",
			},
			wantErr: false,
		},
		{
			name: "Empty username",
			user: User{
				Username: "",
				FullName: "Alice Example",
			},
			wantErr: true,
		},
		{
			name: "Username too short",
			user: User{
				Username: "al",
				FullName: "Alice Example",
			},
			wantErr: true,
		},
		{
			name: "Username with spaces",
			user: User{
				Username: "alice example",
				FullName: "Alice Example",
			},
			wantErr: true,
		},
		{
			name: "Empty full name",
			user: User{
				Username: "alice",
				FullName: "",
			},
			wantErr: true,
		},
		{
			name: "Full name too long",
			user: User{
				Username: "alice",
				FullName: "This is a very long full name that goes well past the maximum allowed length of one hundred characters for testing",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
