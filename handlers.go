package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/gin-gonic/gin"
)

// requireAuthContext resolves the caller's identity and role for the
// current request. Routes behind RequireSession always have a username
// in context, so a failure here means the user row is gone.
func requireAuthContext(c *gin.Context) (*models.AuthContext, bool) {
	authz, err := models.LoadAuthContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return authz, true
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, funcName string, err error) {
	switch {
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	default:
		logger := config.GetLogger()
		config.LogError(logger, "handlers.go", funcName, "request failed", nil, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
