package fyers

import (
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Nikhil1914/EMA-BOT/internal/logger"
)

// Client talks to the fyers v3 REST API for quotes and order placement.
type Client struct {
	http     *resty.Client
	clientID string
	log      *logger.Logger
}

func New(baseURL, clientID, accessToken string, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", clientID+":"+accessToken)

	return &Client{
		http:     http,
		clientID: clientID,
		log:      log,
	}
}

func (c *Client) logEntry() *logrus.Entry {
	return c.log.WithComponent("fyers_rest")
}

// LoadAccessToken reads the daily access token from the file the login flow
// writes it to.
func LoadAccessToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read access token")
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.Errorf("access token file is empty: %s", path)
	}
	return token, nil
}
