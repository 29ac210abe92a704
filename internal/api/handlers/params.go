package handlers

import (
	"strconv"

	"github.com/foodprices-project/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ValidationIssue describes one rejected request parameter
type ValidationIssue struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input string   `json:"input"`
}

// paramParser collects every malformed parameter before a handler touches the store
type paramParser struct {
	c      *fiber.Ctx
	issues []ValidationIssue
}

func newParamParser(c *fiber.Ctx) *paramParser {
	return &paramParser{c: c}
}

// pathInt parses a required integer path parameter
func (p *paramParser) pathInt(param, name string) int64 {
	raw := p.c.Params(param)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.issues = append(p.issues, intIssue("path", name, raw))
		return 0
	}
	return v
}

// queryInt parses an optional integer query parameter; absent yields nil.
// A present but empty value is malformed, not absent.
func (p *paramParser) queryInt(name string) *int64 {
	if !p.c.Context().QueryArgs().Has(name) {
		return nil
	}
	raw := p.c.Query(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.issues = append(p.issues, intIssue("query", name, raw))
		return nil
	}
	return &v
}

// queryDate parses an optional YYYY-MM-DD query parameter
func (p *paramParser) queryDate(name string) *models.Date {
	if !p.c.Context().QueryArgs().Has(name) {
		return nil
	}
	raw := p.c.Query(name)
	d, err := models.ParseDate(raw)
	if err != nil {
		p.issues = append(p.issues, ValidationIssue{
			Type:  "date_parsing",
			Loc:   []string{"query", name},
			Msg:   "Input should be a valid date in YYYY-MM-DD format",
			Input: raw,
		})
		return nil
	}
	return &d
}

func (p *paramParser) failed() bool {
	return len(p.issues) > 0
}

// reject writes the 422 response listing every issue
func (p *paramParser) reject() error {
	return p.c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"detail": p.issues,
	})
}

func intIssue(location, name, raw string) ValidationIssue {
	return ValidationIssue{
		Type:  "int_parsing",
		Loc:   []string{location, name},
		Msg:   "Input should be a valid integer, unable to parse string as an integer",
		Input: raw,
	}
}

// errorDetail renders the structured {"detail":{"error_code","message"}} body
func errorDetail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"detail": fiber.Map{
			"error_code": status,
			"message":    message,
		},
	})
}
