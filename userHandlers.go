package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inout_backend/models"
)

func (a *api) listUsers(c *gin.Context) {
	users, err := a.store.ListActiveUsers(c.Request.Context())
	if err != nil {
		respondError(c, "listUsers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "data": users})
}

func (a *api) getUser(c *gin.Context) {
	id, ok := pathId(c, "getUser", "id")
	if !ok {
		return
	}
	user, err := a.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getUser", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

func (a *api) createUser(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, "createUser", &input) {
		return
	}
	user, err := a.store.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "createUser", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully with vendor and item",
		"data":    user,
	})
}

func (a *api) updateUser(c *gin.Context) {
	id, ok := pathId(c, "updateUser", "id")
	if !ok {
		return
	}
	var patch models.UserPatch
	if !bindJSON(c, "updateUser", &patch) {
		return
	}
	user, err := a.store.UpdateUser(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, "updateUser", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully", "data": user})
}

func (a *api) deleteUser(c *gin.Context) {
	id, ok := pathId(c, "deleteUser", "id")
	if !ok {
		return
	}
	user, err := a.store.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteUser", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully", "data": user})
}
