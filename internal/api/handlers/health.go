package handlers

import "github.com/gofiber/fiber/v2"

const serviceName = "WFP Food Prices API"

// Health reports liveness
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": serviceName + " is running!"})
}

// Home is the landing route
// GET /
func Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "This is the " + serviceName + " homepage!"})
}
