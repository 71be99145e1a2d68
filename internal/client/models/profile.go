package models

// Profile is the signed-in user's own record from /api/user/profile.
// ProfileImage is a URL path relative to the API base, empty when no image
// has been uploaded.
type Profile struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	Firstname    string `json:"firstname,omitempty"`
	Lastname     string `json:"lastname,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (p Profile) HasImage() bool {
	return p.ProfileImage != ""
}
