package handler

import (
	"GoLocker/internal/dto"
	"GoLocker/internal/service"
	"GoLocker/model"
	"GoLocker/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Login authenticates a user and returns a token.
func Login(c *gin.Context) {
	var loginRequest dto.LoginRequest
	if err := c.ShouldBind(&loginRequest); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	var user *model.User
	var err error
	if user, err = service.IsExist(loginRequest.Username); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid username or password")
		return
	}
	if err = service.CheckPassword(loginRequest.Username, loginRequest.Password); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid username or password")
		return
	}
	token, err := utils.GenerateToken(user.ID, user.UserName)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "token generation failed")
		return
	}
	utils.Success(c, gin.H{
		"message": "success",
		"token":   token,
		"user":    user,
	})
}
