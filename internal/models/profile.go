package models

// Placeholder shown for age and gender when no NIC can be decoded.
const Placeholder = "-"

// DerivedDetails holds what is computed from the NIC. Age is a string so the
// placeholder can be carried in the same field.
type DerivedDetails struct {
	Birthday string `json:"birthday"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Valid    bool   `json:"valid"`
}

// EmptyDerivedDetails is what the profile shows for a missing or invalid NIC.
func EmptyDerivedDetails() DerivedDetails {
	return DerivedDetails{Age: Placeholder, Gender: Placeholder}
}

// AdminProfile is the profile page of the signed-in admin.
type AdminProfile struct {
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	NIC          string         `json:"nic"`
	ProfileImage string         `json:"profileImage"`
	Derived      DerivedDetails `json:"derived"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=50"`
	Email        string `json:"email" validate:"required,email,max=100"`
	NIC          string `json:"nic" validate:"omitempty,nic"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=3000000"`
}

// ProfileUpdatePayload is the body sent to PUT /users/:name. Derived fields
// are null when the NIC does not decode.
type ProfileUpdatePayload struct {
	UserName string  `json:"userName"`
	Email    string  `json:"email"`
	ID       string  `json:"id"`
	Img      string  `json:"img"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	Birthday *string `json:"birthday"`
}

// DecodeNICRequest is the body of POST /nic/decode.
type DecodeNICRequest struct {
	NIC string `json:"nic" validate:"required,max=32"`
}

// SessionRequest stores the backend token for the browser session.
type SessionRequest struct {
	Token    string `json:"token" validate:"required"`
	Username string `json:"username" validate:"omitempty,max=50"`
}
