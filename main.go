package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/ubcma/membership-portal-api/cmd/app"
)

// @contact.name   UBCMA Tech
// @contact.url    https://www.ubcma.ca
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Bearer token (also accepted as the membership-portal.session_token cookie)
//
// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
