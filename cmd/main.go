package main

import (
	"devsphere-api/app"

	_ "devsphere-api/docs"
)

// @title           DevSphere API
// @version         1.0
// @description     Social posting platform for developers.

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
