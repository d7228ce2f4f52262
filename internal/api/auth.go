package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/bordertrade/internal/auth"
	"github.com/mmynk/bordertrade/internal/models"
)

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	RealName string      `json:"realName"`
	Role     models.Role `json:"role"`
}

type registerResponse struct {
	UserID string `json:"userId"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role     models.Role `json:"role"`
	RealName string      `json:"realName"`
	Username string      `json:"username"`
	Token    string      `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	slog.Info("Register request received", "username", req.Username, "role", req.Role)

	user, err := s.auth.Register(r.Context(), req.Username, req.RealName, req.Role, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingField):
		writeError(w, http.StatusBadRequest, "必填项不能为空")
		return
	case errors.Is(err, auth.ErrUsernameExists):
		writeError(w, http.StatusBadRequest, "用户名已存在")
		return
	case errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		writeInternal(w, r, "Register", err, "服务器异常，注册失败")
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "注册成功",
		Data:    registerResponse{UserID: user.ID},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "请求格式错误")
		return
	}
	slog.Info("Login request received", "username", req.Username)

	session, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "用户不存在")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "密码错误")
		return
	default:
		writeInternal(w, r, "Login", err, "登录异常")
		return
	}

	writeData(w, http.StatusOK, loginResponse{
		Role:     session.User.Role,
		RealName: session.User.RealName,
		Username: session.User.Username,
		Token:    session.Token,
	})
}
