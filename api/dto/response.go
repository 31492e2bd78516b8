package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Message string   `json:"message" example:"Validation failed"`
	Errors  []string `json:"errors,omitempty"`
}

// MessageResponseDTO는 단순 메시지 응답 형식이다.
type MessageResponseDTO struct {
	Msg string `json:"msg" example:"Welcome to our home page"`
}
