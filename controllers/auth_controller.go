package controllers

import (
	"errors"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"receiving-portal/config"
	"receiving-portal/models"
	"receiving-portal/repositories"
	"receiving-portal/services"
	"receiving-portal/utils"
)

type AuthController struct {
	Repo     repositories.OrderRepository
	Sessions *services.SessionService
	DB       *gorm.DB
}

func NewAuthController(repo repositories.OrderRepository, sessions *services.SessionService, db *gorm.DB) *AuthController {
	return &AuthController{Repo: repo, Sessions: sessions, DB: db}
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing required fields",
		})
	}

	now := time.Now()
	loginLog := models.LoginLog{
		Username:    input.Username,
		IPAddress:   ctx.IP(),
		UserAgent:   ctx.Get("User-Agent"),
		LoginAt:     &now,
		LoginStatus: "FAILED",
	}

	result, err := c.Repo.Login(input.Username, input.Password)
	if err != nil {
		reason := err.Error()
		loginLog.FailureReason = &reason
		utils.InsertLoginLog(c.DB, loginLog)

		if errors.Is(err, repositories.ErrUnauthenticated) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid username or password",
			})
		}
		return respondError(ctx, err)
	}

	session := c.Sessions.Create(result)

	token, err := c.makeToken(result, session.SessionID)
	if err != nil {
		c.Sessions.Drop(session.SessionID)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to sign session token",
		})
	}

	loginLog.SessionID = session.SessionID
	loginLog.LoginStatus = "SUCCESS"
	loginLog.FailureReason = nil
	utils.InsertLoginLog(c.DB, loginLog)

	ctx.Cookie(config.GetTokenCookie(token))

	criteria := c.Sessions.Criteria(session)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    "Login successful",
		"token":      token,
		"username":   result.Username,
		"role":       result.Role,
		"warehouses": result.Warehouses,
		"whsCode":    criteria.WhsCode,
	})
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	sessionID, ok := ctx.Locals("sessionID").(string)
	if !ok || sessionID == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid session",
		})
	}

	c.Sessions.Drop(sessionID)
	utils.CloseLoginLog(c.DB, sessionID)

	// Drop the token cookie
	ctx.Cookie(config.GetTokenCookie(""))

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

func (c *AuthController) Me(ctx *fiber.Ctx) error {
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	criteria := c.Sessions.Criteria(session)

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"username":   session.Username,
		"role":       session.Role,
		"warehouses": session.Warehouses,
		"whsCode":    criteria.WhsCode,
	})
}

func (c *AuthController) makeToken(result *models.LoginResult, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        result.Username,
		"role":       result.Role,
		"warehouses": result.Warehouses,
		"session_id": sessionID,
		"iat":        now.Unix(),
		"nbf":        now.Add(-60 * time.Second).Unix(),
		"exp":        now.Add(time.Duration(config.JWTExpiration) * time.Second).Unix(),
		"iss":        "receiving-portal",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}
