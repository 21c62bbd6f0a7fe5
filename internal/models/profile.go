package models

import "errors"

// Profile is a named user identity. All personalised collections are scoped
// to a profile id.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	ThemeColor string `json:"themeColor"`
	CreatedAt  int64  `json:"createdAt"` // epoch millis
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.New("profile id is required")
	}
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	return nil
}

// ProfileList is the stored, insertion-ordered registry
type ProfileList []Profile

func (l ProfileList) Validate() error {
	return validateEach(l)
}

// Index returns the position of the profile with id, or -1
func (l ProfileList) Index(id string) int {
	for i, p := range l {
		if p.ID == id {
			return i
		}
	}
	return -1
}
