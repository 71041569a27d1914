package dto

// AskRequest is the chat API question payload. Mode is "fast" or
// "thinking"; anything else is treated as fast.
type AskRequest struct {
	Query string `json:"query" validate:"required"`
	Mode  string `json:"mode"`
}

type AskResponse struct {
	Response string `json:"response"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SavePromptRequest struct {
	Content string `json:"content" validate:"required"`
}

type PromptResponse struct {
	Mode    string `json:"mode"`
	Content string `json:"content"`
}

type SetModelRequest struct {
	ModelName string `json:"model_name" validate:"required"`
}

type ModelInfoResponse struct {
	CurrentModel    string   `json:"current_model"`
	AvailableModels []string `json:"available_models"`
}

type FileListResponse struct {
	Files []string `json:"files"`
}

type AdminLogResponse struct {
	Action   string `json:"action"`
	Filename string `json:"filename"`
	User     string `json:"user"`
	Date     string `json:"date"`
}
