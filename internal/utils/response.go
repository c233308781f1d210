package utils

import "github.com/gofiber/fiber/v2"

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page      int   `json:"page,omitempty"`
	PageSize  int   `json:"page_size,omitempty"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page,omitempty"`
}

// NewMeta builds pagination metadata.
func NewMeta(page, pageSize int, total int64) *Meta {
	totalPage := 0
	if pageSize > 0 {
		totalPage = (int(total) + pageSize - 1) / pageSize
	}
	return &Meta{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

func Success(c *fiber.Ctx, data interface{}, message string, statusCode ...int) error {
	code := fiber.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	resp := Response{
		Success: true,
		Message: message,
		Data:    data,
	}

	return c.Status(code).JSON(resp)
}

func SuccessWithMeta(c *fiber.Ctx, data interface{}, meta *Meta, message string) error {
	resp := Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func Error(c *fiber.Ctx, message string, statusCode ...int) error {
	code := fiber.StatusBadRequest
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	resp := Response{
		Success: false,
		Error:   message,
	}

	return c.Status(code).JSON(resp)
}

// ErrorWithCode is Error plus a machine readable code.
func ErrorWithCode(c *fiber.Ctx, message, errorCode string, statusCode int) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
		Code:    errorCode,
	})
}
