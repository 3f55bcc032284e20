package handlers

import "github.com/gin-gonic/gin"

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, successResponse{Success: true, Data: data})
}
