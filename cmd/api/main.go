package main

// @title Perk Roulette API
// @version 1.0
// @description Random survivor builds with per-user blacklists and match statistics.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http
import (
	_ "perk-roulette/docs"
	protocol "perk-roulette/protocal"

	_ "github.com/arsmn/fiber-swagger/v2"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Println(err)
	}
}
