package main

import (
	"employee-role-api/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		logrus.WithError(err).Fatal("Employee API failed to start")
	}

	// blocks until SIGINT or SIGTERM
	app.Run()
}
