package main

import (
	"net/http"

	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"bitbucket.org/nuamsoft/taxadmin_backend/utils"
	"github.com/gin-gonic/gin"
)

func listQualificationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TaxQualificationFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
			return
		}

		records, pageInfo, err := models.GetPagedTaxQualifications(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "listQualificationsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"qualifications": records, "page_info": pageInfo})
	}
}

func createQualificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		var input models.NewTaxQualification
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		qualification, err := models.CreateTaxQualification(c.Request.Context(), authz, &input)
		if err != nil {
			respondError(c, "createQualificationHandler", err)
			return
		}
		c.JSON(http.StatusCreated, qualification)
	}
}

func getQualificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}

		qualification, err := models.GetTaxQualification(c.Request.Context(), id)
		if err != nil {
			respondError(c, "getQualificationHandler", err)
			return
		}
		c.JSON(http.StatusOK, qualification)
	}
}

func updateQualificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		var input models.UpdateTaxQualificationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		qualification, err := models.UpdateTaxQualification(c.Request.Context(), authz, id, &input)
		if err != nil {
			respondError(c, "updateQualificationHandler", err)
			return
		}
		c.JSON(http.StatusOK, qualification)
	}
}

func deleteQualificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		qualification, err := models.DeleteTaxQualification(c.Request.Context(), authz, id)
		if err != nil {
			respondError(c, "deleteQualificationHandler", err)
			return
		}
		c.JSON(http.StatusOK, qualification)
	}
}

func copyQualificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		duplicate, err := models.CopyTaxQualification(c.Request.Context(), authz, id)
		if err != nil {
			respondError(c, "copyQualificationHandler", err)
			return
		}
		c.JSON(http.StatusCreated, duplicate)
	}
}

func factorDescriptionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"factors": models.FactorDescriptions()})
	}
}
