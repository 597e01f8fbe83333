package domain

// User is a mock-authenticated profile. There are no credentials.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}
