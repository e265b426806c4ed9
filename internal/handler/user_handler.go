package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/aniket-manhas-git/aasra-sewa/internal/middleware"
	"github.com/aniket-manhas-git/aasra-sewa/internal/model"
	"github.com/aniket-manhas-git/aasra-sewa/internal/service"
)

const sessionMaxAge = 24 * time.Hour

// fields a user may never change through the update endpoint
var lockedUserFields = []string{"password", "email", "_id", "isHost"}

type UserHandler struct {
	Users   *service.UserService
	Auth    gin.HandlerFunc
	Respond Responder
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/profile", h.Auth, h.Profile)
	rg.PUT("/update", h.Auth, h.Update)
	rg.POST("/logout", h.Auth, h.Logout)
}

type registerRequest struct {
	FullName     string    `json:"fullName" binding:"required" label:"Full name"`
	Email        string    `json:"email" binding:"required,emailfmt" label:"Email"`
	Password     string    `json:"password" binding:"required,strongpwd" label:"Password"`
	Phone        string    `json:"phone" binding:"required,phone10" label:"Phone number"`
	Age          model.Int `json:"age" binding:"required,adult" label:"Age"`
	BloodGroup   string    `json:"bloodGroup" binding:"required,bloodgroup" label:"Blood group"`
	Address      string    `json:"address" binding:"required" label:"Address"`
	AadhaarImage string    `json:"aadhaarImage" binding:"required" label:"Aadhaar image"`
	Gender       string    `json:"gender" binding:"required,gender" label:"Gender"`
	Face         string    `json:"face" binding:"required" label:"Face image"`
}

// bind decodes the JSON body into v and reports the first problem to the
// client. It returns false when the request has been answered.
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if msg, ok := validationMessage(err); ok {
			fail(c, http.StatusBadRequest, msg)
		} else {
			fail(c, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

// POST /api/v1/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req) {
		return
	}
	usr, err := h.Users.Register(c.Request.Context(), service.Registration{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Age:          int(req.Age),
		BloodGroup:   req.BloodGroup,
		Address:      req.Address,
		AadhaarImage: req.AadhaarImage,
		Gender:       req.Gender,
		Face:         req.Face,
	})
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    gin.H{"id": usr.ID, "email": usr.Email, "fullName": usr.FullName},
		"success": true,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	usr, token, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	h.setCookie(c, middleware.UserCookie, token, sessionMaxAge)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"success": true,
		"user": gin.H{
			"id":         usr.ID,
			"email":      usr.Email,
			"fullName":   usr.FullName,
			"phone":      usr.Phone,
			"age":        usr.Age,
			"bloodGroup": usr.BloodGroup,
			"gender":     usr.Gender,
			"address":    usr.Address,
		},
	})
}

// GET /api/v1/user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	usr, err := h.Users.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile retrieved successfully", "user": usr, "success": true})
}

type updateUserRequest struct {
	FullName     *string    `json:"fullName"`
	Phone        *string    `json:"phone" binding:"omitempty,phone10"`
	Age          *model.Int `json:"age" binding:"omitempty,adult"`
	BloodGroup   *string    `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	Address      *string    `json:"address"`
	AadhaarImage *string    `json:"aadhaarImage"`
	Gender       *string    `json:"gender" binding:"omitempty,gender"`
	Face         *string    `json:"face"`
}

func (r updateUserRequest) toModel() model.UserUpdate {
	uu := model.UserUpdate{
		FullName:     r.FullName,
		Phone:        r.Phone,
		BloodGroup:   r.BloodGroup,
		Address:      r.Address,
		AadhaarImage: r.AadhaarImage,
		Gender:       r.Gender,
		Face:         r.Face,
	}
	if r.Age != nil {
		age := int(*r.Age)
		uu.Age = &age
	}
	return uu
}

// PUT /api/v1/user/update
func (h *UserHandler) Update(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, k := range lockedUserFields {
		if _, ok := keys[k]; ok {
			fail(c, http.StatusBadRequest, fmt.Sprintf("You are not allowed to update '%s' field.", k))
			return
		}
	}

	var req updateUserRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			msg = err.Error()
		}
		fail(c, http.StatusBadRequest, msg)
		return
	}

	usr, err := h.Users.Update(c.Request.Context(), middleware.UserID(c), req.toModel())
	if err != nil {
		h.Respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": usr, "success": true})
}

// POST /api/v1/user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.UserCookie, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully", "success": true})
}

// setCookie writes an http-only, SameSite=Strict cookie. A negative maxAge
// deletes it.
func (h *UserHandler) setCookie(c *gin.Context, name, value string, maxAge time.Duration) {
	setSessionCookie(c, name, value, maxAge, h.Respond.Production)
}

func setSessionCookie(c *gin.Context, name, value string, maxAge time.Duration, secure bool) {
	age := int(maxAge.Seconds())
	if maxAge < 0 {
		age = -1
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, age, "/", "", secure, true)
}
