package types

// LoginRequest is the credential payload forwarded to the SSO service.
type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type LoginUserData struct {
	UUID          string   `json:"uuid"`
	Username      string   `json:"username"`
	LegalName     *string  `json:"legal_name"`
	Phone         string   `json:"phone"`
	PhoneVerified bool     `json:"phone_verified"`
	Email         *string  `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	Avatar        string   `json:"avatar"`
	Permissions   []string `json:"permissions"`
}

type LoginUserResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	Data    LoginUserData `json:"data"`
}

type RegisterUserRequest struct {
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Token       string `json:"token"`
	Access      string `json:"-"`
}

func (r RegisterUserRequest) Validate() string {
	if r.PhoneNumber == "" {
		return "phone_number is required"
	}
	if r.Username == "" {
		return "username is required"
	}
	if r.Password == "" {
		return "password is required"
	}
	return ""
}

type RegisteredUser struct {
	UUID        string  `json:"uuid"`
	Username    string  `json:"username"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email"`
	LegalName   *string `json:"legal_name"`
	Avatar      *string `json:"avatar"`
}

type RegisterUserResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

type GetServiceTokenRequest struct {
	InternalIdentifier string `json:"internal_identifier"`
	RedirectURL        string `json:"redirect_url"`
	UserType           string `json:"user_type"`
}

func (r GetServiceTokenRequest) Validate() string {
	if r.InternalIdentifier == "" {
		return "internal_identifier is required"
	}
	if r.RedirectURL == "" {
		return "redirect_url is required"
	}
	if r.UserType == "" {
		return "user_type is required"
	}
	return ""
}
