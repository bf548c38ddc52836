package main

import (
	"net/http"

	"bitbucket.org/nuamsoft/taxadmin_backend/models"
	"github.com/gin-gonic/gin"
)

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		if authz.IsAdmin() {
			dashboard, err := models.GetAdminDashboard(c.Request.Context(), authz)
			if err != nil {
				respondError(c, "dashboardHandler", err)
				return
			}
			c.JSON(http.StatusOK, dashboard)
			return
		}

		dashboard, err := models.GetUserDashboard(c.Request.Context())
		if err != nil {
			respondError(c, "dashboardHandler", err)
			return
		}
		c.JSON(http.StatusOK, dashboard)
	}
}

func qualificationPanelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		panel, err := models.GetQualificationPanel(c.Request.Context(), authz)
		if err != nil {
			respondError(c, "qualificationPanelHandler", err)
			return
		}
		c.JSON(http.StatusOK, panel)
	}
}

func reportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, ok := requireAuthContext(c)
		if !ok {
			return
		}

		report, err := models.GetFinancialReport(c.Request.Context(), authz)
		if err != nil {
			respondError(c, "reportsHandler", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
