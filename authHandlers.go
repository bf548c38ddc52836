package main

import (
	"net/http"

	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/gin-gonic/gin"
)

func signupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRegistration
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		registration, err := models.Signup(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "signupHandler", err)
			return
		}
		c.JSON(http.StatusCreated, registration)
	}
}

type signinRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func signinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input signinRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		info, err := models.Login(c.Request.Context(), input.Username, input.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func signoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"signed_out": true})
	}
}
