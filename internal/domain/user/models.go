package user

// User is the directory record mirrored from the identity backend's user
// collection. ID is the local record id; IdentityID is the id of the backing
// account on the identity service.
type User struct {
	ID                string `json:"id"`
	IdentityID        string `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Address1          string `json:"address1"`
	City              string `json:"city"`
	State             string `json:"state"`
	PostalCode        string `json:"postalCode"`
	DateOfBirth       string `json:"dateOfBirth"`
	SSN               string `json:"-"`
	DwollaCustomerID  string `json:"dwollaCustomerId"`
	DwollaCustomerURL string `json:"dwollaCustomerUrl"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// SignUpParams carries the profile fields collected at registration.
// DateOfBirth is YYYY-MM-DD; SSN is the last four digits only.
type SignUpParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

type CreateUserParams struct {
	IdentityID        string
	Email             string
	FirstName         string
	LastName          string
	Address1          string
	City              string
	State             string
	PostalCode        string
	DateOfBirth       string
	SSN               string
	DwollaCustomerID  string
	DwollaCustomerURL string
}
