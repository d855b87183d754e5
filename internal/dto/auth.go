package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
// 讲师注册后需管理员确认；学生注册后立即可用
type RegisterRequest struct {
	Name        string `json:"name"         binding:"required,min=2,max=100"`
	Email       string `json:"email"        binding:"required,email"`
	Password    string `json:"password"     binding:"required,min=8,max=64"`
	Role        string `json:"role"         binding:"required,oneof=student lecturer"`
	IndexNumber string `json:"index_number" binding:"omitempty,max=20"`
	Major       string `json:"major"        binding:"omitempty,max=100"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
