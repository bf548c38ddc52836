package main

import (
	"net/http"

	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/gin-gonic/gin"
)

func listClassificationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := models.GetClassificationStats(c.Request.Context())
		if err != nil {
			respondError(c, "listClassificationsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"classifications": stats})
	}
}

func createClassificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		var input models.NewClassification
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		classification, err := models.CreateClassification(c.Request.Context(), authz, &input)
		if err != nil {
			respondError(c, "createClassificationHandler", err)
			return
		}
		c.JSON(http.StatusCreated, classification)
	}
}

func updateClassificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		var input models.NewClassification
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		classification, err := models.UpdateClassification(c.Request.Context(), authz, id, &input)
		if err != nil {
			respondError(c, "updateClassificationHandler", err)
			return
		}
		c.JSON(http.StatusOK, classification)
	}
}

func deleteClassificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		classification, err := models.DeleteClassification(c.Request.Context(), authz, id)
		if err != nil {
			respondError(c, "deleteClassificationHandler", err)
			return
		}
		c.JSON(http.StatusOK, classification)
	}
}
