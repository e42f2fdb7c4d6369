package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required,min=3"`
	FirstPassword string `json:"first-password" binding:"required,min=5"`
	LastPassword  string `json:"second-password" binding:"required,min=5"`
	Email         string `json:"email" binding:"required,email"`
}

type FileListRequest struct {
	Search string `json:"search"`
}

type FileDeleteRequest struct {
	FileID uint64 `json:"file_id" binding:"required"`
}
