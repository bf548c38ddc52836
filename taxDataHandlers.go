package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/nuamsoft/taxadmin_backend/config"
	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"github.com/gin-gonic/gin"
)

func listTaxDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TaxDataFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
			return
		}

		records, pageInfo, err := models.GetPagedTaxData(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "listTaxDataHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tax_data": records, "page_info": pageInfo})
	}
}

func importTaxDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		classificationId, err := strconv.Atoi(c.PostForm("classification_id"))
		if err != nil || classificationId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "classification_id is required"})
			return
		}
		mode, err := models.ParseImportMode(c.DefaultPostForm("mode", string(models.ImportModeCreate)))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, "importTaxDataHandler", err)
			return
		}
		defer file.Close()

		summary, err := models.ImportTaxData(c.Request.Context(), authz,
			classificationId, fileHeader.Filename, file, fileHeader.Size, mode)
		if err != nil {
			// A summary alongside the error means some rows were already
			// committed before the failure.
			if summary != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "summary": summary})
				return
			}
			respondError(c, "importTaxDataHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}

func deleteTaxDataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		record, err := models.DeleteTaxData(c.Request.Context(), authz, id)
		if err != nil {
			respondError(c, "deleteTaxDataHandler", err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func taxDataTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		template, err := models.BuildTaxDataTemplate()
		if err != nil {
			respondError(c, "taxDataTemplateHandler", err)
			return
		}
		defer template.Close()

		c.Header("Content-Disposition", `attachment; filename="plantilla_datos_tributarios.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := template.Write(c.Writer); err != nil {
			logger := config.GetLogger()
			config.LogError(logger, "taxDataHandlers.go", "taxDataTemplateHandler", "write workbook", nil, err)
		}
	}
}
