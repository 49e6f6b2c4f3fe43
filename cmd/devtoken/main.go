// Command devtoken prints a bearer token accepted by the server's jwt identity provider.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("devtoken: %v", err)
		os.Exit(1)
	}
}
