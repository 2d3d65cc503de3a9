package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	httpServices "pickup-scheduler/httpServices/sso"
	"pickup-scheduler/logger"
	"pickup-scheduler/models/user"
	"pickup-scheduler/types"
	"pickup-scheduler/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthController delegates password and OAuth handling to the external SSO
// service and mirrors accounts into the local users table.
type AuthController struct {
	db             *gorm.DB
	httpService    *httpServices.SSOClient
	loggerInstance *logger.AsyncLogger
}

func NewAuthController(service *httpServices.SSOClient, db *gorm.DB, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{httpService: service, db: db, loggerInstance: asyncLogger}
}

// Helper function to set secure cookies based on environment
func (h *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   isProduction, // Only secure in production (HTTPS)
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

func (h *AuthController) Register(c *fiber.Ctx) error {
	var req types.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if validationErr := req.Validate(); validationErr != "" {
		logger.Error(validationErr, nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Message: validationErr,
			Status:  fiber.StatusBadRequest,
		})
	}

	// Forward the caller's access token when present; registration may be
	// performed by an already authenticated operator.
	authHeader := c.Get("Authorization")
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
		req.Access = tokenParts[1]
	}

	registerResponse, err := h.httpService.RequestRegisterUser(req)
	if err != nil {
		logger.Error("Failed to register user", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ErrorResponse{
			Message: "Failed to register user",
			Status:  fiber.StatusBadGateway,
		})
	}

	// If registration was successful, mirror the user locally
	if registerResponse.Status == "success" && registerResponse.User.UUID != "" {
		newUser := user.User{
			Uuid:          registerResponse.User.UUID,
			Username:      registerResponse.User.Username,
			Phone:         registerResponse.User.PhoneNumber,
			PhoneVerified: false,
			EmailVerified: false,
			Permissions:   user.StringSlice{},
		}

		if registerResponse.User.Email != nil && *registerResponse.User.Email != "" {
			newUser.Email = registerResponse.User.Email
		}
		if registerResponse.User.LegalName != nil {
			newUser.LegalName = *registerResponse.User.LegalName
		}
		if registerResponse.User.Avatar != nil {
			newUser.Avatar = *registerResponse.User.Avatar
		}

		if err := h.db.Create(&newUser).Error; err != nil {
			// External registration succeeded; a local sync failure is not fatal
			logger.Error("Failed to create user in local database", err)
		} else {
			logger.Success("User created in local database successfully. UUID: " + newUser.Uuid)
		}
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success("User registered successfully at " + time.Now().Format("2006-01-02 03:04:05 PM"))
	return c.Status(fiber.StatusOK).JSON(registerResponse)
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var req types.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	loginResponse, err := h.httpService.RequestLoginUser(req)
	if err != nil {
		logger.Error("Failed to login user", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Message: "Failed to login user",
			Status:  fiber.StatusBadGateway,
		})
	}

	// Mirror the account locally on first login
	if loginResponse.Status == "success" && loginResponse.Data.UUID != "" {
		var existingUser user.User
		result := h.db.Where("uuid = ?", loginResponse.Data.UUID).First(&existingUser)

		if result.Error != nil {
			newUser := user.User{
				Uuid:          loginResponse.Data.UUID,
				Username:      loginResponse.Data.Username,
				Phone:         loginResponse.Data.Phone,
				PhoneVerified: loginResponse.Data.PhoneVerified,
				EmailVerified: loginResponse.Data.EmailVerified,
				Avatar:        loginResponse.Data.Avatar,
				Permissions:   user.StringSlice(loginResponse.Data.Permissions),
			}

			if loginResponse.Data.LegalName != nil {
				newUser.LegalName = *loginResponse.Data.LegalName
			}
			if loginResponse.Data.Email != nil && *loginResponse.Data.Email != "" {
				newUser.Email = loginResponse.Data.Email
			}

			if err := h.db.Create(&newUser).Error; err != nil {
				// Continue with login even if local database sync fails
				logger.Error("Failed to create user in local database", err)
			} else {
				logger.Success("User created in local database successfully. UUID: " + newUser.Uuid)
			}
		}
	}

	// Set HTTP-only secure cookies for access and refresh tokens
	if loginResponse.Access != "" {
		h.setSecureCookie(c, "access", loginResponse.Access, 8*60*60) // 8 hours
	}
	if loginResponse.Refresh != "" {
		h.setSecureCookie(c, "refresh", loginResponse.Refresh, 7*24*60*60) // 7 days
	}

	responseBodyStr := ""
	if b, err := json.Marshal(loginResponse); err == nil {
		responseBodyStr = string(b)
	}
	logEntry := utils.CreateSanitizedLogEntry(c)
	logEntry.ResponseBody = responseBodyStr
	h.loggerInstance.Log(logEntry)

	logger.Success("User logged in successfully. uuid: " + loginResponse.Data.UUID)
	return c.Status(fiber.StatusOK).JSON(loginResponse)
}

func (h *AuthController) GetServiceToken(c *fiber.Ctx) error {
	var req types.GetServiceTokenRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request payload",
			Status:  fiber.StatusBadRequest,
		})
	}

	if validationErr := req.Validate(); validationErr != "" {
		logger.Error(validationErr, nil)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: validationErr,
			Status:  fiber.StatusBadRequest,
		})
	}

	redirectToken, err := h.httpService.RequestRedirectToken(httpServices.ServiceUserRequest{
		InternalIdentifier: req.InternalIdentifier,
		RedirectURL:        req.RedirectURL,
		UserType:           req.UserType,
	})
	if err != nil {
		logger.Error("Failed to retrieve redirect token", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Message: "Failed to communicate with external service",
			Status:  fiber.StatusBadGateway,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Got redirect token successfully",
		Status:  fiber.StatusOK,
		Data: map[string]interface{}{
			"redirect_token": redirectToken,
		},
	})
}

func (h *AuthController) LogOut(c *fiber.Ctx) error {
	// Clear the access and refresh cookies
	h.setSecureCookie(c, "access", "", -1)
	h.setSecureCookie(c, "refresh", "", -1)

	logger.Success("Logout successful")
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Logout successful",
		Status:  fiber.StatusOK,
	})
}
