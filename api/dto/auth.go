package dto

// RegisterRequestDTO는 회원가입 요청 바디다.
type RegisterRequestDTO struct {
	Username string `json:"username" validate:"required,min=3,max=25"`
	Email    string `json:"email" validate:"required,email,min=3,max=50"`
	Phone    string `json:"phone" validate:"required,len=10"`
	Password string `json:"password" validate:"required,min=7,max=20"`
}

// LoginRequestDTO는 로그인 요청 바디다.
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponseDTO는 register/login 성공 응답이다.
type AuthResponseDTO struct {
	Message string `json:"message" example:"Login Successful"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	UserID  string `json:"userId" example:"6710c0ffee0000000000abcd"`
}

// UserDTO는 GET /api/auth/user 응답이다. 비밀번호는 포함하지 않는다.
type UserDTO struct {
	ID       string `json:"_id" example:"6710c0ffee0000000000abcd"`
	Username string `json:"username" example:"asha"`
	Email    string `json:"email" example:"asha@example.com"`
	Phone    string `json:"phone" example:"9876543210"`
	IsAdmin  bool   `json:"isAdmin" example:"false"`
}
